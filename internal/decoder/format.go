package decoder

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FormatKey turns a machine-readable object key into a human-readable
// heading: camelCase, snake_case, and kebab-case all become Title Case.
// "market_share_estimate" -> "Market Share Estimate",
// "competitiveScore" -> "Competitive Score".
func FormatKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return key
	}
	var b strings.Builder
	b.Grow(len(key) + 4)
	prev := rune(0)
	for _, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteByte(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	r := []rune(strings.ToLower(w))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// FormatCount renders a count compactly: nil -> "N/A", millions -> "1.2M",
// thousands -> "3.4K", otherwise the integer itself.
func FormatCount(n *float64) string {
	if n == nil {
		return "N/A"
	}
	v := *n
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}
