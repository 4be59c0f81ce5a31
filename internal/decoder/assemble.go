package decoder

import (
	"strings"

	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

// assemble groups a token stream into sections at the given nesting level.
// It never rejects input: unmatched structural characters become standalone
// structural fragments and any trailing state is flushed at end-of-stream.
func (d *Decoder) assemble(tokens []token, level int) []secdoc.Section {
	var out []secdoc.Section
	current := d.newSection(level)
	var para []secdoc.Fragment

	flushPara := func() {
		if len(para) > 0 {
			current.Content = append(current.Content, para...)
			para = nil
		}
	}
	flushSection := func() {
		flushPara()
		if current.Heading != "" || len(current.Content) > 0 {
			out = append(out, d.finishSection(current))
		}
		current = d.newSection(level)
	}

	// A heading on the very first line starts the first section.
	i := 0
	if heading, next, ok := d.findHeading(tokens, 0); ok {
		current.Heading = heading
		i = next
	}

	for ; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case tokenNewline:
			if heading, next, ok := d.findHeading(tokens, i+1); ok {
				flushSection()
				current.Heading = heading
				i = next - 1
			} else {
				flushPara()
			}
		case tokenText:
			d.appendTextual(&para, tok.Value, false)
		case tokenQuote:
			para = append(para, secdoc.Fragment{Text: tok.Value, Style: secdoc.StyleQuote})
		case tokenFormatted:
			para = append(para, secdoc.Fragment{Text: tok.Value, Style: styleForFormatting(tok.Formatting)})
		case tokenKey:
			para = append(para, secdoc.Fragment{Text: tok.Value, Style: secdoc.StyleKey})
		case tokenValue:
			para = append(para, secdoc.Fragment{Text: tok.Value, Style: secdoc.StyleValue})
		case tokenStructural:
			switch tok.Value {
			case ",", ":", ";", ".":
				d.appendTextual(&para, tok.Value, true)
			default:
				para = append(para, secdoc.Fragment{Text: tok.Value, Style: secdoc.StyleStructural})
			}
		}
	}
	flushSection()
	return out
}

func (d *Decoder) newSection(level int) secdoc.Section {
	return secdoc.Section{
		Content: []secdoc.Fragment{},
		Level:   level,
		Type:    secdoc.TypeForLevel(level),
	}
}

// finishSection applies the deeper-level type heuristics: content dominated
// by quoted or emphasized fragments gets the matching section type.
func (d *Decoder) finishSection(s secdoc.Section) secdoc.Section {
	if s.Level < 2 || len(s.Content) == 0 {
		return s
	}
	switch s.Content[0].Style {
	case secdoc.StyleQuote:
		s.Type = secdoc.TypeQuote
	case secdoc.StyleBold, secdoc.StyleEmphasis:
		s.Type = secdoc.TypeEmphasis
	}
	return s
}

// findHeading checks whether the token at `from` starts a heading. Only the
// first token after a line boundary can carry the signal: anything else would
// mean skipping content tokens, and every token in the stream must surface as
// a fragment. It returns the normalized heading and the index of the first
// token after the consumed heading (including a trailing colon token).
func (d *Decoder) findHeading(tokens []token, from int) (string, int, bool) {
	if from >= len(tokens) {
		return "", 0, false
	}
	tok := tokens[from]
	switch tok.Type {
	case tokenText:
		// A numbered-list prefix splits around the period token; rejoin
		// "N", ".", "Title" into one numbered heading.
		if isAllDigits(tok.Value) && from+2 < len(tokens) &&
			tokens[from+1].Type == tokenStructural && tokens[from+1].Value == "." &&
			tokens[from+2].Type == tokenText && len(tokens[from+2].Value) <= 80 {
			next := from + 3
			if next < len(tokens) && tokens[next].Type == tokenStructural && tokens[next].Value == ":" {
				next++
			}
			return NormalizeHeading(tokens[from+2].Value), next, true
		}
		candidate := tok.Value
		// The colon often tokenizes separately; rejoin it for the check.
		if from+1 < len(tokens) && tokens[from+1].Type == tokenStructural && tokens[from+1].Value == ":" {
			candidate += ":"
		}
		if !IsHeadingCandidate(candidate) {
			return "", 0, false
		}
		next := from + 1
		if strings.HasSuffix(candidate, ":") && next < len(tokens) &&
			tokens[next].Type == tokenStructural && tokens[next].Value == ":" {
			next++
		}
		return NormalizeHeading(candidate), next, true
	case tokenKey:
		// "Overview: ..." tokenizes as a key-value pair; a heading-looking
		// key still starts a section and its value stays as content.
		if IsHeadingCandidate(tok.Value + ":") {
			return NormalizeHeading(tok.Value), from + 1, true
		}
	}
	return "", 0, false
}

// appendTextual grows the current paragraph. Consecutive text and sentence
// punctuation coalesce into one fragment so a multi-sentence paragraph stays
// a single paragraph-styled unit; any other token type breaks the run.
func (d *Decoder) appendTextual(para *[]secdoc.Fragment, s string, punctuation bool) {
	if punctuation {
		if n := len(*para); n > 0 && isTextualStyle((*para)[n-1].Style) {
			last := &(*para)[n-1]
			last.Text += s
			last.Style = d.classifyText(last.Text)
			return
		}
		*para = append(*para, secdoc.Fragment{Text: s, Style: secdoc.StylePunctuation})
		return
	}
	t := strings.TrimSpace(s)
	if t == "" {
		return
	}
	if n := len(*para); n > 0 && isTextualStyle((*para)[n-1].Style) {
		last := &(*para)[n-1]
		last.Text += " " + t
		last.Style = d.classifyText(last.Text)
		return
	}
	*para = append(*para, secdoc.Fragment{Text: t, Style: d.classifyText(t)})
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isTextualStyle(s secdoc.FragmentStyle) bool {
	switch s {
	case secdoc.StylePlain, secdoc.StyleParagraph, secdoc.StyleHeading:
		return true
	}
	return false
}

// classifyText styles a bare text span: heading-looking spans keep heading
// styling even mid-paragraph, long or punctuated spans read as paragraphs,
// everything else is plain.
func (d *Decoder) classifyText(text string) secdoc.FragmentStyle {
	if IsHeadingCandidate(text) {
		return secdoc.StyleHeading
	}
	if IsParagraphText(text) {
		return secdoc.StyleParagraph
	}
	return secdoc.StylePlain
}

func styleForFormatting(formatting string) secdoc.FragmentStyle {
	switch formatting {
	case "bold":
		return secdoc.StyleBold
	case "italic":
		return secdoc.StyleItalic
	case "emphasis":
		return secdoc.StyleEmphasis
	case "highlight":
		return secdoc.StyleHighlight
	}
	return secdoc.StylePlain
}
