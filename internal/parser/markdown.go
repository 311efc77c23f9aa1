package parser

import (
	"bytes"
	"io"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. ATX/setext headings
// become bold spans sized by level; every other top-level block is body text.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var spans spanList
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			spans.add(nodeText(node, src), HeadingFontSize(node.Level), true, 0)
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				spans.add(nodeText(item, src), BodyFontSize, false, 0)
			}
		default:
			spans.add(nodeText(n, src), BodyFontSize, false, 0)
		}
	}

	return &doctree.Document{
		Filename:  filename,
		PageCount: 1,
		Spans:     spans.spans,
	}, nil
}

// nodeText flattens a goldmark node to plain text. Code and raw HTML blocks
// contribute their source lines; everything else contributes inline text.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch node := n.(type) {
	case *ast.Text:
		buf.Write(node.Segment.Value(src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return buf.String()
	case *ast.String:
		return string(node.Value)
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return buf.String()
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if buf.Len() > 0 && c.Type() == ast.TypeBlock {
			buf.WriteByte(' ')
		}
		buf.WriteString(nodeText(c, src))
	}
	return buf.String()
}
