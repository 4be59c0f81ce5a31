package decoder

import (
	"regexp"
	"strings"
)

type tokenType int

const (
	tokenText tokenType = iota
	tokenFormatted
	tokenQuote
	tokenStructural
	tokenNewline
	tokenKey
	tokenValue
)

// token is the decoder-internal unit between raw text and fragments.
type token struct {
	Type       tokenType
	Value      string
	Pos        int
	Formatting string // bold, italic, emphasis, highlight (tokenFormatted only)
}

// formatRule is one prioritized tokenizer pattern. Rules are tried in order
// at each scan position; the first match wins. The order resolves ambiguity:
// ***x*** must not be captured by the single-* rule.
type formatRule struct {
	re         *regexp.Regexp
	typ        tokenType
	formatting string
	enabled    func(Options) bool
}

var formatRules = []formatRule{
	{regexp.MustCompile(`^\*\*\*([^*\n]+)\*\*\*`), tokenFormatted, "emphasis",
		func(o Options) bool { return o.EnableEmphasis }},
	{regexp.MustCompile(`^\*\*([^\n]+?)\*\*`), tokenFormatted, "bold",
		func(o Options) bool { return o.EnableBoldFormatting }},
	{regexp.MustCompile(`^\*([^*\n]+)\*`), tokenFormatted, "italic",
		func(o Options) bool { return o.EnableItalicFormatting }},
	{regexp.MustCompile(`^__([^_\n]+)__`), tokenFormatted, "bold",
		func(o Options) bool { return o.EnableBoldFormatting }},
	{regexp.MustCompile(`^_([^_\n]+)_`), tokenFormatted, "italic",
		func(o Options) bool { return o.EnableItalicFormatting }},
	{regexp.MustCompile(`^\[([^\[\]\n]+)\]`), tokenFormatted, "highlight",
		func(o Options) bool { return o.EnableHighlighting }},
	{regexp.MustCompile(`^\{([^{}\n]+)\}`), tokenFormatted, "highlight",
		func(o Options) bool { return o.EnableHighlighting }},
	{regexp.MustCompile(`^\(IMPORTANT:\s*([^)\n]+)\)`), tokenFormatted, "highlight",
		func(o Options) bool { return o.EnableHighlighting }},
	{regexp.MustCompile(`^"([^"\n]+)"`), tokenQuote, "",
		func(o Options) bool { return o.EnableQuotes }},
	{regexp.MustCompile(`^'([^'\n]+)'`), tokenQuote, "",
		func(o Options) bool { return o.EnableQuotes }},
}

// keyValueRe matches the "Label: value" shorthand: a run of letters and
// spaces, a colon, then everything up to the next comma, newline, or period.
var keyValueRe = regexp.MustCompile(`^([A-Za-z][A-Za-z ]{0,48}[A-Za-z]):[ \t]*([^,\n.]+)`)

const structuralChars = ",:;.{}[]"

// tokenize converts cleaned text into an ordered token list. The whole input
// is consumed exactly once, left to right, non-overlapping; anything no rule
// matches becomes a text token verbatim. Disabled formatting rules are
// skipped entirely, so their markers flow through as plain text.
func (d *Decoder) tokenize(text string) []token {
	var tokens []token
	var pending strings.Builder
	pendingPos := 0

	flush := func(pos int) {
		if pending.Len() == 0 {
			return
		}
		v := strings.TrimSpace(pending.String())
		if v != "" {
			tokens = append(tokens, token{Type: tokenText, Value: v, Pos: pendingPos})
		}
		pending.Reset()
		pendingPos = pos
	}

	pos := 0
	for pos < len(text) {
		rest := text[pos:]

		if m := d.matchFormatRule(rest); m != nil {
			flush(pos)
			tokens = append(tokens, token{
				Type:       m.rule.typ,
				Value:      strings.TrimSpace(m.inner),
				Pos:        pos,
				Formatting: m.rule.formatting,
			})
			pos += m.width
			pendingPos = pos
			continue
		}

		c := text[pos]
		if c == '\n' {
			flush(pos)
			tokens = append(tokens, token{Type: tokenNewline, Value: "\n", Pos: pos})
			pos++
			pendingPos = pos
			continue
		}
		if strings.IndexByte(structuralChars, c) >= 0 {
			flush(pos)
			tokens = append(tokens, token{Type: tokenStructural, Value: string(c), Pos: pos})
			pos++
			pendingPos = pos
			continue
		}

		// Key-value shorthand applies only at a fresh token boundary, where
		// none of the higher-priority rules consumed the span.
		if strings.TrimSpace(pending.String()) == "" {
			if m := keyValueRe.FindStringSubmatch(rest); m != nil {
				flush(pos)
				tokens = append(tokens,
					token{Type: tokenKey, Value: strings.TrimSpace(m[1]), Pos: pos},
					token{Type: tokenValue, Value: strings.TrimSpace(m[2]), Pos: pos + len(m[1]) + 1},
				)
				pos += len(m[0])
				pendingPos = pos
				continue
			}
		}

		pending.WriteByte(c)
		pos++
	}
	flush(pos)
	return tokens
}

type ruleMatch struct {
	rule  *formatRule
	inner string
	width int
}

func (d *Decoder) matchFormatRule(rest string) *ruleMatch {
	for i := range formatRules {
		r := &formatRules[i]
		if !r.enabled(d.opts) {
			continue
		}
		m := r.re.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		return &ruleMatch{rule: r, inner: m[1], width: len(m[0])}
	}
	return nil
}
