package decoder

import (
	"regexp"
	"strings"
	"unicode"
)

// The classification heuristics live here as named predicates because their
// exact thresholds are part of the decoding contract, not incidental.

var numberedPrefixRe = regexp.MustCompile(`^\d+\.\s+`)

// headingKeywords are labels that always read as section headings, matched
// case-insensitively with an optional plural "s".
var headingKeywords = map[string]bool{
	"overview":       true,
	"summary":        true,
	"analysis":       true,
	"recommendation": true,
	"strategy":       true,
	"strategies":     true,
	"insight":        true,
	"conclusion":     true,
	"key points":     true,
	"key point":      true,
	"important":      true,
	"note":           true,
	"warning":        true,
	"tip":            true,
}

// IsHeadingCandidate reports whether a text span reads as a section heading:
// a short span with a trailing colon, a numbered-list prefix, a Title-Case
// phrase, or one of the fixed heading keywords.
func IsHeadingCandidate(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if strings.HasSuffix(t, ":") && len(t) <= 80 {
		return true
	}
	if numberedPrefixRe.MatchString(t) {
		return true
	}
	if isHeadingKeyword(t) {
		return true
	}
	return isTitleCasePhrase(t)
}

func isHeadingKeyword(t string) bool {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(t), ":"))
	if headingKeywords[key] {
		return true
	}
	return headingKeywords[strings.TrimSuffix(key, "s")]
}

// isTitleCasePhrase matches short phrases of 2-6 words that all start with an
// uppercase letter or digit, e.g. "Market Intelligence".
func isTitleCasePhrase(t string) bool {
	if len(t) > 60 {
		return false
	}
	words := strings.Fields(t)
	if len(words) < 2 || len(words) > 6 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsParagraphText reports whether a plain text span should be styled as a
// paragraph rather than a bare snippet. The 50-char threshold is contractual.
func IsParagraphText(text string) bool {
	return len(text) > 50 || strings.ContainsAny(text, ".,;")
}

// IsMeaningfulQuote decides whether quotation marks around a span are
// intentional and must be preserved. Noise quotes from naive upstream string
// concatenation fail all of these checks.
func IsMeaningfulQuote(inner string) bool {
	t := strings.TrimSpace(inner)
	if t == "" {
		return false
	}
	if strings.ContainsRune(t, ':') {
		return true
	}
	first := []rune(t)[0]
	if unicode.IsUpper(first) { // reads like a title or sentence
		return true
	}
	if unicode.IsDigit(first) {
		return true
	}
	if strings.ContainsAny(t, `"'`) {
		return true
	}
	if len(t) > 20 {
		return true
	}
	if strings.ContainsRune(t, '\n') {
		return true
	}
	switch t[len(t)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

var (
	headingNumberRe = regexp.MustCompile(`^\s*\d+\.\s*`)
	trailingColonRe = regexp.MustCompile(`\s*:\s*$`)
)

// NormalizeHeading strips list numbering, emphasis markers, and the trailing
// colon from a heading candidate.
func NormalizeHeading(text string) string {
	t := headingNumberRe.ReplaceAllString(text, "")
	t = strings.ReplaceAll(t, "*", "")
	t = strings.ReplaceAll(t, "_", "")
	t = trailingColonRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
