package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipElements never contribute visible text
var skipElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Head:     true,
}

// blockElements end a line of text
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Tr: true, atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Blockquote: true, atom.Dd: true, atom.Dt: true,
}

// HTMLToText extracts visible text from an HTML document, one block per
// line, so that "Name, Title" lines on team pages survive intact. Bold text
// is wrapped in ** like markdown.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	afterOpen := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.DataAtom] {
			return
		}

		bold := n.Type == html.ElementNode && (n.DataAtom == atom.Strong || n.DataAtom == atom.B)
		if bold {
			if needsSpace(&b) {
				b.WriteByte(' ')
			}
			b.WriteString("**")
			afterOpen = true
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if !afterOpen && needsSpace(&b) {
					b.WriteByte(' ')
				}
				b.WriteString(text)
				afterOpen = false
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if bold {
			b.WriteString("**")
			afterOpen = false
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteByte('\n')
			afterOpen = false
		}
	}
	walk(doc)

	return tidyLines(b.String()), nil
}

func needsSpace(b *strings.Builder) bool {
	s := b.String()
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	return last != ' ' && last != '\n'
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && line != "****" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
