package decoder

import (
	"regexp"
	"strings"

	"github.com/KomaiX512/insightdeck/internal/jsondoc"
)

// Upstream services sometimes double-encode: a string field whose value is
// itself a serialized JSON document. These helpers route such strings back
// into the structural walker instead of the tokenizer.

var escapedKeyValueRe = regexp.MustCompile(`\\"[^"\\]+\\":\s*[\[{]`)

// LooksLikeEmbeddedJSON reports whether a string value smells like a
// serialized JSON document. A positive is only a routing hint; the parse may
// still fail and fall back to text.
func LooksLikeEmbeddedJSON(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) < 2 {
		return false
	}
	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		return true
	}
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		return true
	}
	if strings.Contains(t, `\"`) || strings.Contains(t, `{"`) || strings.Contains(t, `["`) {
		return true
	}
	return escapedKeyValueRe.MatchString(t)
}

// parseEmbedded tries to recover a JSON document from a string value: first
// the raw text, then once more after unescaping. Only objects and arrays
// count as recovered documents; a parse failure is a routing decision, not an
// error.
func parseEmbedded(text string) (any, bool) {
	t := strings.TrimSpace(text)
	if v, ok := parseDoc(t); ok {
		return v, true
	}
	return parseDoc(unescapeArtifacts(t))
}

func parseDoc(s string) (any, bool) {
	v, err := jsondoc.Parse([]byte(s))
	if err != nil {
		return nil, false
	}
	switch v.(type) {
	case jsondoc.Doc, []any:
		return v, true
	}
	return nil, false
}
