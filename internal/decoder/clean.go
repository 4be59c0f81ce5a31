package decoder

import (
	"regexp"
	"strings"
)

// Clean normalizes a raw string into human-readable text: JSON-escape
// artifacts are unescaped, whitespace runs collapse to single spaces, and
// noise quotes around the whole span are stripped. Paragraph breaks (two or
// more newlines) survive as "\n\n"; a lone newline is absorbed into a space.
//
// Clean is idempotent: it applies its normalization pass until the text stops
// changing, so Clean(Clean(x)) == Clean(x) even for inputs whose unescaping
// exposes further escape sequences.
func Clean(text string) string {
	s := text
	for range 6 {
		next := cleanPass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanPass(s string) string {
	s = unescapeArtifacts(s)
	s = normalizeWhitespace(s)
	s = stripWrappingQuotes(s)
	return s
}

// unescapeArtifacts resolves literal backslash sequences left behind by
// upstream double-encoding. Unknown sequences are kept verbatim.
func unescapeArtifacts(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}

var (
	paragraphBreakRe = regexp.MustCompile(`\n[ \t]*\n[\s]*`)
	spaceRunRe       = regexp.MustCompile(`[ \t]+`)
)

// paragraphMarker is a sentinel that cannot appear in cleaned text; it
// protects intentional paragraph breaks during whitespace collapsing.
const paragraphMarker = "\x00"

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = paragraphBreakRe.ReplaceAllString(s, paragraphMarker)
	s = strings.ReplaceAll(s, "\n", " ")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, paragraphMarker, "\n\n")
	return strings.TrimSpace(s)
}

// stripWrappingQuotes removes quotation marks around the whole span unless
// the span looks intentionally quoted (see IsMeaningfulQuote).
func stripWrappingQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first != last || (first != '"' && first != '\'') {
		return s
	}
	inner := s[1 : len(s)-1]
	if IsMeaningfulQuote(inner) {
		return s
	}
	return strings.TrimSpace(inner)
}
