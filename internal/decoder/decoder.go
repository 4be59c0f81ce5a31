// Package decoder converts arbitrary semi-structured payloads (the output of
// analytics and strategy backends whose shape is not contractually fixed)
// into a flat, ordered list of labeled, styled sections for the dashboard
// renderer. It never returns an error: malformed text degrades to plain and
// structural fragments, unparseable embedded JSON falls back to text, and the
// depth guard caps runaway nesting.
package decoder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/KomaiX512/insightdeck/internal/jsondoc"
	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

// Decoder is safe for concurrent use; the only shared state is the
// mutex-guarded token cache.
type Decoder struct {
	opts        Options
	log         *slog.Logger
	cache       *tokenCache
	skip        map[string]bool
	fingerprint string
}

// New builds a Decoder. A nil logger discards debug tracing.
func New(opts Options, log *slog.Logger) *Decoder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	skip := make(map[string]bool, len(opts.SkipDecodingForElements))
	for _, k := range opts.SkipDecodingForElements {
		skip[k] = true
	}
	return &Decoder{
		opts:        opts,
		log:         log,
		cache:       newTokenCache(opts.CacheSize),
		skip:        skip,
		fingerprint: opts.fingerprint(),
	}
}

// Options returns the decoding configuration this Decoder was built with.
func (d *Decoder) Options() Options { return d.opts }

// CacheStats reports token cache effectiveness.
func (d *Decoder) CacheStats() CacheStats { return d.cache.stats() }

// Decode walks a parsed JSON value and returns its flat section list in
// pre-order of the source. It accepts jsondoc values (order-preserving),
// stdlib-decoded values, and anything else via the primitive path; it never
// panics and never returns an error.
func (d *Decoder) Decode(value any) []secdoc.Section {
	sections := d.walk(value, 0)
	if sections == nil {
		sections = []secdoc.Section{}
	}
	return sections
}

func (d *Decoder) walk(value any, level int) []secdoc.Section {
	if level > d.opts.MaxNestingLevel {
		if d.opts.EnableDebugLogging {
			d.log.Debug("nesting limit exceeded", "level", level, "max", d.opts.MaxNestingLevel)
		}
		return []secdoc.Section{{
			Heading: "Deep Nested Content",
			Content: []secdoc.Fragment{{Text: d.rawDump(value), Style: secdoc.StylePlain}},
			Level:   level,
			Type:    secdoc.TypeForLevel(level),
		}}
	}

	switch v := value.(type) {
	case nil:
		return scalarSection("Value", "null", level)
	case string:
		return d.walkString(v, level)
	case bool:
		return scalarSection("Value", strconv.FormatBool(v), level)
	case json.Number:
		return scalarSection("Value", v.String(), level)
	case float64:
		return scalarSection("Value", formatFloat(v), level)
	case int:
		return scalarSection("Value", strconv.Itoa(v), level)
	case int64:
		return scalarSection("Value", strconv.FormatInt(v, 10), level)
	case []any:
		return d.walkArray(v, level)
	case jsondoc.Doc:
		return d.walkDoc(v, level)
	case map[string]any:
		return d.walkDoc(docFromMap(v), level)
	default:
		// Non-JSON-safe values stringify via the primitive path.
		return scalarSection("Value", fmt.Sprintf("%v", v), level)
	}
}

// walkString routes embedded JSON back into the walker, otherwise cleans,
// tokenizes, and assembles the text into sections.
func (d *Decoder) walkString(s string, level int) []secdoc.Section {
	if LooksLikeEmbeddedJSON(s) {
		if v, ok := parseEmbedded(s); ok {
			if d.opts.EnableDebugLogging {
				d.log.Debug("embedded json recovered", "level", level, "bytes", len(s))
			}
			return d.walk(v, level+1)
		}
	}
	cleaned := Clean(s)
	if cleaned == "" {
		return nil
	}
	return d.assemble(d.tokenizeCached(cleaned, level), level)
}

func (d *Decoder) tokenizeCached(cleaned string, level int) []token {
	if d.cache == nil {
		return d.tokenize(cleaned)
	}
	key := cacheKey{text: cleaned, level: level, fingerprint: d.fingerprint}
	if tokens, ok := d.cache.get(key); ok {
		return tokens
	}
	tokens := d.tokenize(cleaned)
	d.cache.put(key, tokens)
	return tokens
}

func (d *Decoder) walkArray(items []any, level int) []secdoc.Section {
	if len(items) == 0 {
		return []secdoc.Section{{
			Heading: "Empty Array",
			Content: []secdoc.Fragment{},
			Level:   level,
			Type:    secdoc.TypeForLevel(level),
		}}
	}

	indexed := len(items) > 1
	if !indexed {
		for _, item := range items {
			switch item.(type) {
			case jsondoc.Doc, map[string]any:
				indexed = true
			}
		}
	}

	var out []secdoc.Section
	for i, item := range items {
		if indexed {
			out = append(out, secdoc.Section{
				Heading: fmt.Sprintf("Item %d", i+1),
				Content: []secdoc.Fragment{},
				Level:   level,
				Type:    secdoc.TypeForLevel(level),
			})
		}
		out = append(out, d.walk(item, level+1)...)
	}
	return out
}

func (d *Decoder) walkDoc(doc jsondoc.Doc, level int) []secdoc.Section {
	if len(doc) == 0 {
		return []secdoc.Section{{
			Heading: "Empty Object",
			Content: []secdoc.Fragment{},
			Level:   level,
			Type:    secdoc.TypeForLevel(level),
		}}
	}

	var out []secdoc.Section
	for _, e := range doc {
		out = append(out, d.walkEntry(e, level)...)
	}
	return out
}

// walkEntry decodes a single object key. Every visited key contributes at
// least one visible section.
func (d *Decoder) walkEntry(e jsondoc.Entry, level int) []secdoc.Section {
	heading := FormatKey(e.Key)
	keySection := secdoc.Section{
		Heading: heading,
		Content: []secdoc.Fragment{},
		Level:   level,
		Type:    secdoc.TypeForLevel(level),
	}

	// Skip-list escape hatch: render the value verbatim, no reformatting.
	if d.skip[e.Key] {
		keySection.Content = []secdoc.Fragment{{Text: d.rawDump(e.Value), Style: secdoc.StylePlain}}
		return []secdoc.Section{keySection}
	}

	switch v := e.Value.(type) {
	case nil:
		keySection.Content = []secdoc.Fragment{{Text: "null", Style: secdoc.StylePlain}}
		return []secdoc.Section{keySection}
	case bool:
		keySection.Content = []secdoc.Fragment{{Text: strconv.FormatBool(v), Style: secdoc.StylePlain}}
		return []secdoc.Section{keySection}
	case json.Number:
		keySection.Content = []secdoc.Fragment{{Text: v.String(), Style: secdoc.StylePlain}}
		return []secdoc.Section{keySection}
	case float64:
		keySection.Content = []secdoc.Fragment{{Text: formatFloat(v), Style: secdoc.StylePlain}}
		return []secdoc.Section{keySection}
	case int:
		keySection.Content = []secdoc.Fragment{{Text: strconv.Itoa(v), Style: secdoc.StylePlain}}
		return []secdoc.Section{keySection}
	case string:
		return d.walkStringEntry(keySection, v, level)
	default:
		subs := d.walk(v, level+1)
		if len(subs) == 0 {
			keySection.Content = []secdoc.Fragment{{Text: "No data available", Style: secdoc.StylePlain}}
			return []secdoc.Section{keySection}
		}
		return append([]secdoc.Section{keySection}, subs...)
	}
}

func (d *Decoder) walkStringEntry(keySection secdoc.Section, v string, level int) []secdoc.Section {
	// Double-encoded payloads splice their decoded sub-sections in under a
	// heading-only section carrying the key.
	if LooksLikeEmbeddedJSON(v) {
		if parsed, ok := parseEmbedded(v); ok {
			subs := d.walk(parsed, level+1)
			if len(subs) == 0 {
				keySection.Content = []secdoc.Fragment{{Text: "No data available", Style: secdoc.StylePlain}}
				return []secdoc.Section{keySection}
			}
			return append([]secdoc.Section{keySection}, subs...)
		}
	}

	subs := d.walkString(v, level+1)
	switch {
	case len(subs) == 0:
		keySection.Content = []secdoc.Fragment{{Text: v, Style: secdoc.StylePlain}}
		return []secdoc.Section{keySection}
	case len(subs) == 1 && subs[0].Heading == "":
		// Single anonymous section: fold its content under the key.
		keySection.Content = subs[0].Content
		return []secdoc.Section{keySection}
	default:
		return append([]secdoc.Section{keySection}, subs...)
	}
}

func (d *Decoder) rawDump(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func scalarSection(heading, text string, level int) []secdoc.Section {
	return []secdoc.Section{{
		Heading: heading,
		Content: []secdoc.Fragment{{Text: text, Style: secdoc.StylePlain}},
		Level:   level,
		Type:    secdoc.TypeForLevel(level),
	}}
}

func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// docFromMap converts a stdlib-decoded map, whose insertion order is already
// lost, into an ordered document with sorted keys for determinism.
func docFromMap(m map[string]any) jsondoc.Doc {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	doc := make(jsondoc.Doc, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, jsondoc.Entry{Key: k, Value: m[k]})
	}
	return doc
}
