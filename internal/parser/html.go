package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. h1..h6 become bold heading spans, text
// blocks become body spans, and <title> is reported as the metadata title.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var spans spanList

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			// Loose text in <div>, <section> and friends.
			spans.add(n.Data, BodyFontSize, false, 0)
			return
		}
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				spans.add(textContent(n), HeadingFontSize(level), true, 0)
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "th", "blockquote", "pre", "dt", "dd", "figcaption":
				spans.add(textContent(n), BodyFontSize, isEmphasized(n), 0)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(root, "body"); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	var title string
	if t := findElement(root, "title"); t != nil {
		title = textContent(t)
	}

	return &doctree.Document{
		Filename:  filename,
		MetaTitle: normalizeText(title),
		PageCount: 1,
		Spans:     spans.spans,
	}, nil
}

// headingLevel returns 1..6 for h1..h6 and 0 for any other tag.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// isEmphasized reports whether a block's only element child is <b> or
// <strong> wrapping all of its text, as in "<p><strong>Ingredients</strong></p>".
func isEmphasized(n *html.Node) bool {
	var strong *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		case html.ElementNode:
			if strong != nil || (c.Data != "b" && c.Data != "strong") {
				return false
			}
			strong = c
		}
	}
	return strong != nil
}

// textContent joins the text nodes under n with single spaces.
func textContent(n *html.Node) string {
	var parts []string
	for d := range n.Descendants() {
		if d.Type == html.TextNode {
			if t := strings.TrimSpace(d.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// findElement returns the first element named tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	for d := range n.Descendants() {
		if d.Type == html.ElementNode && d.Data == tag {
			return d
		}
	}
	return nil
}
