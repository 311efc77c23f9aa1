package doctree

import "fmt"

// Span is a contiguous run of text sharing one font size and weight.
type Span struct {
	Text     string  // Normalised text content
	FontSize float64 // Size in points
	Font     string  // Base font name (empty for non-PDF sources)
	IsBold   bool
	Page     int     // 0-based page index
	Order    int     // Reading-order sequence within the document
	X, Y     float64 // Origin of the first glyph (PDF user space, 0 for non-PDF sources)
}

// Document is the extracted span stream of one input file.
type Document struct {
	Filename  string // Base name including extension
	MetaTitle string // Title from document metadata, if any
	PageCount int
	Spans     []Span
}

// HeadingLevel is the outline depth, 1 (H1) through 6 (H6).
type HeadingLevel int

const MaxHeadingLevel HeadingLevel = 6

func (l HeadingLevel) String() string {
	return fmt.Sprintf("H%d", int(l))
}

// Heading is a span classified as a heading.
type Heading struct {
	Text  string
	Level HeadingLevel
	Page  int // 0-based
	Order int // Order of the source span
}

// Outline is the title plus headings of one document.
type Outline struct {
	Title    string
	Headings []Heading
}

// Section is the text between one heading and the next.
type Section struct {
	DocumentID string // Filename of the source document
	DocIndex   int    // Position of the document in its collection
	Order      int    // Position of the section within the document
	Title      string
	Page       int // 0-based
	BodyText   string
}
