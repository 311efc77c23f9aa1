package outline

import (
	"github.com/dgallion1/docoutline/internal/doctree"
)

// Assembler composes the title resolver and the heading classifier.
type Assembler struct {
	classifier *Classifier
	titles     *TitleResolver
}

// NewAssembler creates an assembler. A nil resolver uses
// DefaultTitleResolver(classifier).
func NewAssembler(classifier *Classifier, titles *TitleResolver) *Assembler {
	if titles == nil {
		titles = DefaultTitleResolver(classifier)
	}
	return &Assembler{classifier: classifier, titles: titles}
}

// DefaultAssembler uses the default thresholds, patterns and title chain.
func DefaultAssembler() *Assembler {
	return NewAssembler(NewClassifier(DefaultClassifierConfig(), DefaultPatterns()), nil)
}

// Result is the outline of one document plus the bookkeeping needed to split
// it into sections.
type Result struct {
	Outline     doctree.Outline
	TitleOrders []int // Span orders consumed as the title
}

// Assemble resolves the title of doc and classifies the remaining spans.
// Spans taken as the title are left out of both the heading list and the
// size ranking, so a cover-page title does not claim H1.
func (a *Assembler) Assemble(doc *doctree.Document) Result {
	full := NewProfile(doc.Spans)
	title := a.titles.Resolve(doc, full)

	body := doc.Spans
	if len(title.Orders) > 0 {
		consumed := make(map[int]bool, len(title.Orders))
		for _, o := range title.Orders {
			consumed[o] = true
		}
		body = make([]doctree.Span, 0, len(doc.Spans))
		for _, s := range doc.Spans {
			if !consumed[s.Order] {
				body = append(body, s)
			}
		}
	}

	profile := NewProfile(body)
	headings := a.classifier.Classify(body, profile)
	if headings == nil {
		headings = []doctree.Heading{}
	}

	return Result{
		Outline: doctree.Outline{
			Title:    title.Text,
			Headings: headings,
		},
		TitleOrders: title.Orders,
	}
}

// Outline is Assemble without the bookkeeping.
func (a *Assembler) Outline(doc *doctree.Document) doctree.Outline {
	return a.Assemble(doc).Outline
}
