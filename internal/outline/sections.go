package outline

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Sections cuts doc at every heading of res. Spans before the first heading
// form a leading section titled with the document title. Sections never
// overlap and together cover every span in reading order. Heading and title
// spans are not repeated in body text.
func Sections(doc *doctree.Document, res Result, docIndex int) []doctree.Section {
	if len(doc.Spans) == 0 {
		return nil
	}

	headingAt := make(map[int]doctree.Heading, len(res.Outline.Headings))
	for _, h := range res.Outline.Headings {
		headingAt[h.Order] = h
	}
	isTitle := make(map[int]bool, len(res.TitleOrders))
	for _, o := range res.TitleOrders {
		isTitle[o] = true
	}

	var sections []doctree.Section
	var body []string
	var cur *doctree.Section

	flush := func() {
		if cur == nil {
			return
		}
		cur.BodyText = strings.Join(body, " ")
		cur.Order = len(sections)
		sections = append(sections, *cur)
		body = body[:0]
	}

	for _, s := range doc.Spans {
		if h, ok := headingAt[s.Order]; ok {
			flush()
			cur = &doctree.Section{
				DocumentID: doc.Filename,
				DocIndex:   docIndex,
				Title:      h.Text,
				Page:       h.Page,
			}
			continue
		}
		if cur == nil {
			cur = &doctree.Section{
				DocumentID: doc.Filename,
				DocIndex:   docIndex,
				Title:      res.Outline.Title,
				Page:       s.Page,
			}
		}
		if !isTitle[s.Order] {
			body = append(body, s.Text)
		}
	}
	flush()
	return sections
}
