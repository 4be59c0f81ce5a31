package decoder

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/KomaiX512/insightdeck/internal/jsondoc"
	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

func mustParse(t *testing.T, raw string) any {
	t.Helper()
	v, err := jsondoc.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return v
}

func joinText(s secdoc.Section) string {
	var parts []string
	for _, f := range s.Content {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, " ")
}

func TestDecodeNeverReturnsNil(t *testing.T) {
	d := New(DefaultOptions(), nil)

	cases := []any{
		nil,
		"",
		mustParse(t, `{}`),
		mustParse(t, `[]`),
		mustParse(t, `{"deep":{"deep":{"deep":{"deep":{"deep":{"deep":{"deep":1}}}}}}}`),
		42,
		true,
	}
	for i, v := range cases {
		sections := d.Decode(v)
		if sections == nil {
			t.Errorf("case %d: Decode returned nil", i)
		}
	}
}

func TestDecodeEmptyContainers(t *testing.T) {
	d := New(DefaultOptions(), nil)

	sections := d.Decode(mustParse(t, `{}`))
	if len(sections) != 1 || sections[0].Heading != "Empty Object" {
		t.Fatalf("expected single 'Empty Object' section, got %+v", sections)
	}

	sections = d.Decode(mustParse(t, `[]`))
	if len(sections) != 1 || sections[0].Heading != "Empty Array" {
		t.Fatalf("expected single 'Empty Array' section, got %+v", sections)
	}
}

func TestDecodePreservesKeyOrder(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `{"zeta":"one","alpha":"two","mid":"three"}`))

	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	want := []string{"Zeta", "Alpha", "Mid"}
	for i, h := range want {
		if sections[i].Heading != h {
			t.Errorf("section %d: expected heading %q, got %q", i, h, sections[i].Heading)
		}
		if sections[i].Level != 0 {
			t.Errorf("section %d: expected level 0, got %d", i, sections[i].Level)
		}
	}
	if joinText(sections[0]) != "one" {
		t.Errorf("expected folded content 'one', got %q", joinText(sections[0]))
	}
}

func TestDecodeDepthGuard(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxNestingLevel = 2
	d := New(opts, nil)

	sections := d.Decode(mustParse(t, `{"a":{"b":{"c":{"d":1}}}}`))

	deep := 0
	for _, s := range sections {
		if s.Heading == "Deep Nested Content" {
			deep++
			if len(s.Content) == 0 || !strings.Contains(s.Content[0].Text, "d") {
				t.Errorf("expected raw dump to mention truncated key, got %+v", s.Content)
			}
		}
	}
	if deep != 1 {
		t.Fatalf("expected exactly one 'Deep Nested Content' section, got %d", deep)
	}

	// The path down to the guard is still visible.
	want := []string{"A", "B", "C", "Deep Nested Content"}
	if len(sections) != len(want) {
		t.Fatalf("expected %d sections, got %d: %+v", len(want), len(sections), sections)
	}
	for i, h := range want {
		if sections[i].Heading != h {
			t.Errorf("section %d: expected %q, got %q", i, h, sections[i].Heading)
		}
	}
}

func TestDecodeScalarEntries(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `{"count":42,"ratio":3.5,"ok":true,"missing":null}`))

	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}
	want := map[string]string{
		"Count":   "42",
		"Ratio":   "3.5",
		"Ok":      "true",
		"Missing": "null",
	}
	for _, s := range sections {
		if want[s.Heading] != joinText(s) {
			t.Errorf("%s: expected %q, got %q", s.Heading, want[s.Heading], joinText(s))
		}
	}
}

func TestDecodeArrayItemHeadings(t *testing.T) {
	d := New(DefaultOptions(), nil)

	sections := d.Decode(mustParse(t, `["alpha","beta"]`))
	if len(sections) != 4 {
		t.Fatalf("expected 4 sections (2 items + 2 values), got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Item 1" || sections[2].Heading != "Item 2" {
		t.Errorf("expected Item headings, got %q / %q", sections[0].Heading, sections[2].Heading)
	}
	if sections[0].Level != 0 || sections[1].Level != 1 {
		t.Errorf("expected item at level 0 and value at level 1, got %d / %d", sections[0].Level, sections[1].Level)
	}
	if joinText(sections[1]) != "alpha" || joinText(sections[3]) != "beta" {
		t.Errorf("expected element values, got %q / %q", joinText(sections[1]), joinText(sections[3]))
	}
}

func TestDecodeSingleScalarArraySkipsItemHeading(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `["solo"]`))

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Heading != "" || joinText(sections[0]) != "solo" {
		t.Errorf("expected anonymous section with 'solo', got %+v", sections[0])
	}
}

func TestDecodeSingleObjectArrayKeepsItemHeading(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `[{"x":1}]`))

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Heading != "Item 1" {
		t.Errorf("expected 'Item 1', got %q", sections[0].Heading)
	}
	if sections[1].Heading != "X" || sections[1].Level != 1 {
		t.Errorf("expected object key at level 1, got %+v", sections[1])
	}
}

func TestDecodeEmbeddedJSONRecovery(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `{"payload": "{\"score\": 9.5, \"verdict\": \"strong\"}"}`))

	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Payload" || len(sections[0].Content) != 0 {
		t.Errorf("expected heading-only 'Payload' section, got %+v", sections[0])
	}
	if sections[1].Heading != "Score" || joinText(sections[1]) != "9.5" {
		t.Errorf("expected Score 9.5, got %+v", sections[1])
	}
	if sections[2].Heading != "Verdict" || joinText(sections[2]) != "strong" {
		t.Errorf("expected Verdict strong, got %+v", sections[2])
	}
	if sections[1].Level != 1 {
		t.Errorf("expected embedded sections one level deeper, got %d", sections[1].Level)
	}
}

func TestDecodeEmbeddedJSONFallsBackToText(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `{"note": "{not valid json at all"}`))

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Note" {
		t.Errorf("expected 'Note', got %q", sections[0].Heading)
	}
	if !strings.Contains(joinText(sections[0]), "not valid json at all") {
		t.Errorf("expected raw text preserved, got %q", joinText(sections[0]))
	}
}

func TestDecodeSkipList(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipDecodingForElements = []string{"raw_blob"}
	d := New(opts, nil)

	sections := d.Decode(mustParse(t, `{"raw_blob": {"a": 1}}`))
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Raw Blob" {
		t.Errorf("expected 'Raw Blob', got %q", sections[0].Heading)
	}
	if len(sections[0].Content) != 1 || !strings.Contains(sections[0].Content[0].Text, `"a": 1`) {
		t.Errorf("expected verbatim dump of the value, got %+v", sections[0].Content)
	}
}

func TestDecodeKeyFormatting(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `{"market_share_estimate": "high", "competitiveScore": "low"}`))

	if sections[0].Heading != "Market Share Estimate" {
		t.Errorf("expected 'Market Share Estimate', got %q", sections[0].Heading)
	}
	if sections[1].Heading != "Competitive Score" {
		t.Errorf("expected 'Competitive Score', got %q", sections[1].Heading)
	}
}

func TestDecodeTextWithHeadings(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode("Overview:\n\nAll good here today.\n\nKey Points:\n\nGrowth is up.")

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Overview" {
		t.Errorf("expected 'Overview', got %q", sections[0].Heading)
	}
	if sections[1].Heading != "Key Points" {
		t.Errorf("expected 'Key Points', got %q", sections[1].Heading)
	}
	if got := joinText(sections[0]); got != "All good here today." {
		t.Errorf("expected coalesced paragraph, got %q", got)
	}
	if sections[0].Content[0].Style != secdoc.StyleParagraph {
		t.Errorf("expected paragraph style, got %q", sections[0].Content[0].Style)
	}
}

func TestDecodeNumberedHeadings(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode("1. Analysis\n\nThings happened here.\n\n2. Strategy\n\nPlans were made.")

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Analysis" || sections[1].Heading != "Strategy" {
		t.Errorf("expected numbering stripped from headings, got %q / %q",
			sections[0].Heading, sections[1].Heading)
	}
}

func TestDecodeInlineKeyValue(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode("Summary:\nThe quarter went well.")

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Summary" {
		t.Errorf("expected 'Summary', got %q", sections[0].Heading)
	}
	if sections[0].Content[0].Text != "The quarter went well" ||
		sections[0].Content[0].Style != secdoc.StyleValue {
		t.Errorf("expected key-value value fragment, got %+v", sections[0].Content[0])
	}
}

func TestDecodeFormattedFragments(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode("**Critical** growth in ***all*** regions [Q3]")

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	want := []secdoc.Fragment{
		{Text: "Critical", Style: secdoc.StyleBold},
		{Text: "growth in", Style: secdoc.StylePlain},
		{Text: "all", Style: secdoc.StyleEmphasis},
		{Text: "regions", Style: secdoc.StylePlain},
		{Text: "Q3", Style: secdoc.StyleHighlight},
	}
	got := sections[0].Content
	if len(got) != len(want) {
		t.Fatalf("expected %d fragments, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fragment %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestDecodeDisabledFormattingPassesMarkersThrough(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableBoldFormatting = false
	opts.EnableItalicFormatting = false
	opts.EnableEmphasis = false
	d := New(opts, nil)

	sections := d.Decode("**bold** text")
	if len(sections) != 1 || len(sections[0].Content) != 1 {
		t.Fatalf("expected single fragment, got %+v", sections)
	}
	f := sections[0].Content[0]
	if f.Text != "**bold** text" || f.Style != secdoc.StylePlain {
		t.Errorf("expected markers kept as plain text, got %+v", f)
	}
}

func TestDecodeQuoteSectionType(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `{"a": ["first", "\"Q: ok.\""]}`))

	if len(sections) != 5 {
		t.Fatalf("expected 5 sections, got %d: %+v", len(sections), sections)
	}
	last := sections[4]
	if last.Type != secdoc.TypeQuote {
		t.Errorf("expected quote section type, got %q", last.Type)
	}
	if last.Content[0].Style != secdoc.StyleQuote {
		t.Errorf("expected quote fragment, got %+v", last.Content[0])
	}
}

func TestDecodeWhitespaceOnlyStringKeepsKey(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(mustParse(t, `{"blank": "   "}`))

	if len(sections) != 1 || sections[0].Heading != "Blank" {
		t.Fatalf("expected single 'Blank' section, got %+v", sections)
	}
	if len(sections[0].Content) != 1 {
		t.Fatalf("expected the raw value preserved, got %+v", sections[0].Content)
	}
}

func TestDecodeCacheHitsOnRepeatedText(t *testing.T) {
	opts := DefaultOptions()
	opts.CacheSize = 8
	d := New(opts, nil)

	payload := mustParse(t, `{"summary": "Numbers improved across every region."}`)
	d.Decode(payload)
	d.Decode(payload)

	stats := d.CacheStats()
	if stats.Hits == 0 {
		t.Errorf("expected cache hits on repeated decode, got %+v", stats)
	}
	if stats.Capacity != 8 {
		t.Errorf("expected capacity 8, got %d", stats.Capacity)
	}
}

func TestDecodeKeepsTokensBeforeHeadingCandidate(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode("intro\n\n[urgent] Market Summary: details follow")

	var texts []string
	for _, s := range sections {
		for _, f := range s.Content {
			texts = append(texts, f.Text)
		}
	}
	joined := strings.Join(texts, " | ")
	for _, want := range []string{"intro", "urgent", "Market Summary", "details follow"} {
		if !strings.Contains(joined, want) {
			t.Errorf("fragment %q lost from output: %q", want, joined)
		}
	}

	// The heading signal is not the first token after the break, so no
	// section split happens and the highlight keeps its style.
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(sections), sections)
	}
	found := false
	for _, f := range sections[0].Content {
		if f.Text == "urgent" && f.Style == secdoc.StyleHighlight {
			found = true
		}
	}
	if !found {
		t.Errorf("expected highlight fragment preserved, got %+v", sections[0].Content)
	}
}

func TestDecodeQuoteBeforeHeadingNotDropped(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode("lead\n\n\"so they said\" Overview: the rest")

	var texts []string
	for _, s := range sections {
		for _, f := range s.Content {
			texts = append(texts, f.Text)
		}
	}
	joined := strings.Join(texts, " | ")
	if !strings.Contains(joined, "so they said") {
		t.Errorf("quoted span lost from output: %q", joined)
	}
}

func TestDecodeHeadingOnlySectionsCarryEmptyContent(t *testing.T) {
	d := New(DefaultOptions(), nil)

	sections := d.Decode(mustParse(t, `["a", "b"]`))
	if sections[0].Content == nil {
		t.Error("expected Item section to carry empty content, got nil")
	}

	sections = d.Decode(mustParse(t, `{"payload": "{\"x\": 1}"}`))
	if sections[0].Content == nil {
		t.Error("expected spliced key section to carry empty content, got nil")
	}

	out, err := json.Marshal(sections[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"content":[]`) {
		t.Errorf("expected empty content to marshal as [], got %s", out)
	}
}

func TestDecodeMapFallbackSortsKeys(t *testing.T) {
	d := New(DefaultOptions(), nil)
	sections := d.Decode(map[string]any{"beta": "2", "alpha": "1"})

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Heading != "Alpha" || sections[1].Heading != "Beta" {
		t.Errorf("expected sorted keys for unordered maps, got %q / %q",
			sections[0].Heading, sections[1].Heading)
	}
}
