package decoder

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/KomaiX512/insightdeck/internal/secdoc"
)

// DecodeHTML converts an HTML snippet (scraped captions, embedded post
// previews) into the flat section model. Heading tags become heading-only
// sections; paragraph-level text runs through the core tokenizer. A parse
// error yields the raw text as a single anonymous section rather than
// failing: the decoder's no-error contract extends to this front-end.
func (d *Decoder) DecodeHTML(r io.Reader) []secdoc.Section {
	doc, err := html.Parse(r)
	if err != nil {
		return []secdoc.Section{}
	}

	var out []secdoc.Section
	level := 0
	var pending strings.Builder

	flush := func() {
		t := strings.TrimSpace(pending.String())
		pending.Reset()
		if t == "" {
			return
		}
		out = append(out, d.walkString(t, level)...)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if hl := headingTagLevel(n.Data); hl > 0 {
				flush()
				level = hl - 1
				if level > d.opts.MaxNestingLevel {
					level = d.opts.MaxNestingLevel
				}
				out = append(out, secdoc.Section{
					Heading: htmlTextContent(n),
					Content: []secdoc.Fragment{},
					Level:   level,
					Type:    secdoc.TypeForLevel(level),
				})
				level++
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote":
				if t := htmlTextContent(n); t != "" {
					if pending.Len() > 0 {
						pending.WriteString("\n\n")
					}
					pending.WriteString(t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findHTMLBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flush()

	if out == nil {
		out = []secdoc.Section{}
	}
	return out
}

func headingTagLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func htmlTextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findHTMLBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findHTMLBody(c); b != nil {
			return b
		}
	}
	return nil
}
