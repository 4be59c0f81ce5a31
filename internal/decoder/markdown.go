package decoder

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

// DecodeMarkdown converts a markdown document (AI replies often arrive as
// markdown) into the same flat section model the JSON walker produces.
// Headings become heading-only sections at a level derived from the heading
// depth; body text runs through the core tokenizer and assembler.
func (d *Decoder) DecodeMarkdown(src []byte) []secdoc.Section {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(src))

	var out []secdoc.Section
	level := 0
	var pending bytes.Buffer

	flush := func() {
		t := strings.TrimSpace(pending.String())
		pending.Reset()
		if t == "" {
			return
		}
		out = append(out, d.walkString(t, level)...)
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flush()
			level = node.Level - 1
			if level > d.opts.MaxNestingLevel {
				level = d.opts.MaxNestingLevel
			}
			out = append(out, secdoc.Section{
				Heading: string(node.Text(src)),
				Content: []secdoc.Fragment{},
				Level:   level,
				Type:    secdoc.TypeForLevel(level),
			})
			level++
		default:
			if t := markdownText(n, src); t != "" {
				if pending.Len() > 0 {
					pending.WriteString("\n\n")
				}
				pending.WriteString(t)
			}
		}
	}
	flush()

	if out == nil {
		out = []secdoc.Section{}
	}
	return out
}

// markdownText gets the text content of a goldmark AST node, including
// nested inlines.
func markdownText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		if buf.Len() > 0 {
			return strings.TrimSpace(buf.String())
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(markdownText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
