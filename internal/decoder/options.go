package decoder

import (
	"fmt"
	"strings"
)

// Options control decoding behavior. The zero value disables everything; use
// DefaultOptions as the base and override fields as needed.
type Options struct {
	EnableBoldFormatting    bool
	EnableItalicFormatting  bool
	EnableHighlighting      bool
	EnableQuotes            bool
	EnableEmphasis          bool
	MaxNestingLevel         int
	SkipDecodingForElements []string

	// CustomClassPrefix is an opaque tag for downstream consumers. The decoder
	// passes it through untouched.
	CustomClassPrefix string

	EnableDebugLogging bool

	// CacheSize bounds the token cache (entries). Zero disables caching.
	CacheSize int
}

// DefaultOptions returns the standard decoding configuration.
func DefaultOptions() Options {
	return Options{
		EnableBoldFormatting:   true,
		EnableItalicFormatting: true,
		EnableHighlighting:     true,
		EnableQuotes:           true,
		EnableEmphasis:         true,
		MaxNestingLevel:        5,
		CacheSize:              512,
	}
}

// fingerprint identifies every option that changes tokenizer output, for use
// in cache keys.
func (o Options) fingerprint() string {
	flag := func(b bool) byte {
		if b {
			return '1'
		}
		return '0'
	}
	var b strings.Builder
	b.WriteByte(flag(o.EnableBoldFormatting))
	b.WriteByte(flag(o.EnableItalicFormatting))
	b.WriteByte(flag(o.EnableHighlighting))
	b.WriteByte(flag(o.EnableQuotes))
	b.WriteByte(flag(o.EnableEmphasis))
	fmt.Fprintf(&b, ":%d", o.MaxNestingLevel)
	return b.String()
}
