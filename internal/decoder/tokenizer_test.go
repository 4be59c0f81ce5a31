package decoder

import "testing"

func TestTokenizeFormatRulePriority(t *testing.T) {
	d := New(DefaultOptions(), nil)

	cases := []struct {
		in         string
		formatting string
		value      string
	}{
		{"***urgent***", "emphasis", "urgent"},
		{"**strong**", "bold", "strong"},
		{"*slanted*", "italic", "slanted"},
		{"__strong__", "bold", "strong"},
		{"_slanted_", "italic", "slanted"},
		{"[marked]", "highlight", "marked"},
		{"{marked}", "highlight", "marked"},
		{"(IMPORTANT: read this)", "highlight", "read this"},
	}
	for _, c := range cases {
		tokens := d.tokenize(c.in)
		if len(tokens) != 1 {
			t.Errorf("tokenize(%q): expected 1 token, got %d: %+v", c.in, len(tokens), tokens)
			continue
		}
		tok := tokens[0]
		if tok.Type != tokenFormatted || tok.Formatting != c.formatting || tok.Value != c.value {
			t.Errorf("tokenize(%q): expected %s %q, got %+v", c.in, c.formatting, c.value, tok)
		}
	}
}

func TestTokenizeQuotes(t *testing.T) {
	d := New(DefaultOptions(), nil)
	tokens := d.tokenize(`say "hello world" now`)

	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Type != tokenText || tokens[0].Value != "say" {
		t.Errorf("expected leading text, got %+v", tokens[0])
	}
	if tokens[1].Type != tokenQuote || tokens[1].Value != "hello world" {
		t.Errorf("expected quote token, got %+v", tokens[1])
	}
	if tokens[2].Type != tokenText || tokens[2].Value != "now" {
		t.Errorf("expected trailing text, got %+v", tokens[2])
	}
}

func TestTokenizeKeyValuePairs(t *testing.T) {
	d := New(DefaultOptions(), nil)
	tokens := d.tokenize("Score: high, Rank: low")

	want := []token{
		{Type: tokenKey, Value: "Score"},
		{Type: tokenValue, Value: "high"},
		{Type: tokenStructural, Value: ","},
		{Type: tokenKey, Value: "Rank"},
		{Type: tokenValue, Value: "low"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.Type || tokens[i].Value != w.Value {
			t.Errorf("token %d: expected %+v, got %+v", i, w, tokens[i])
		}
	}
}

func TestTokenizeKeyValueNotMidSentence(t *testing.T) {
	d := New(DefaultOptions(), nil)
	tokens := d.tokenize("the ratio Score: high")

	for _, tok := range tokens {
		if tok.Type == tokenKey {
			t.Fatalf("key-value must not fire mid-span, got %+v", tokens)
		}
	}
}

func TestTokenizeStructuralAndNewline(t *testing.T) {
	d := New(DefaultOptions(), nil)
	tokens := d.tokenize("alpha; beta\ngamma")

	want := []struct {
		typ   tokenType
		value string
	}{
		{tokenText, "alpha"},
		{tokenStructural, ";"},
		{tokenText, "beta"},
		{tokenNewline, "\n"},
		{tokenText, "gamma"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Value != w.value {
			t.Errorf("token %d: expected %v %q, got %+v", i, w.typ, w.value, tokens[i])
		}
	}
}

func TestTokenizeEmptyBraces(t *testing.T) {
	d := New(DefaultOptions(), nil)
	tokens := d.tokenize("{}")

	if len(tokens) != 2 || tokens[0].Type != tokenStructural || tokens[1].Type != tokenStructural {
		t.Fatalf("expected 2 structural tokens, got %+v", tokens)
	}
}

func TestTokenizeDisabledRulesAreSkipped(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableQuotes = false
	d := New(opts, nil)

	tokens := d.tokenize(`said "that"`)
	for _, tok := range tokens {
		if tok.Type == tokenQuote {
			t.Fatalf("quote rule should be disabled, got %+v", tokens)
		}
	}
}
