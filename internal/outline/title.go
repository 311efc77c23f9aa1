package outline

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// TitleCandidate is a resolved title and the spans it was taken from.
type TitleCandidate struct {
	Text   string
	Orders []int // Orders of the spans consumed as the title, if any
}

// TitleStrategy proposes a title for doc. ok is false when the strategy has
// nothing to offer.
type TitleStrategy func(doc *doctree.Document, profile FontProfile) (title TitleCandidate, ok bool)

// TitleResolver evaluates strategies in order; the first one that answers
// wins.
type TitleResolver struct {
	strategies []TitleStrategy
}

// NewTitleResolver creates a resolver over strategies. FilenameTitle is
// always appended so resolution never fails.
func NewTitleResolver(strategies ...TitleStrategy) *TitleResolver {
	return &TitleResolver{strategies: append(strategies, FilenameTitle)}
}

// DefaultTitleResolver chains metadata, first-page typography and filename.
func DefaultTitleResolver(c *Classifier) *TitleResolver {
	return NewTitleResolver(MetadataTitle, FirstPageTitle(c))
}

// Resolve returns the title of doc. profile is the profile of all its spans.
func (r *TitleResolver) Resolve(doc *doctree.Document, profile FontProfile) TitleCandidate {
	for _, s := range r.strategies {
		if t, ok := s(doc, profile); ok && strings.TrimSpace(t.Text) != "" {
			t.Text = strings.TrimSpace(t.Text)
			return t
		}
	}
	return TitleCandidate{Text: "Untitled"}
}

var filenameLike = regexp.MustCompile(`(?i)\.(pdf|docx?)$`)

// MetadataTitle uses the document's metadata title unless it is a
// placeholder: empty, a single character, "untitled", the filename stem or a
// filename.
func MetadataTitle(doc *doctree.Document, _ FontProfile) (TitleCandidate, bool) {
	title := strings.TrimSpace(doc.MetaTitle)
	switch {
	case utf8.RuneCountInString(title) <= 1:
		return TitleCandidate{}, false
	case strings.EqualFold(title, "untitled"):
		return TitleCandidate{}, false
	case strings.EqualFold(title, stem(doc.Filename)):
		return TitleCandidate{}, false
	case filenameLike.MatchString(title):
		return TitleCandidate{}, false
	}
	return TitleCandidate{Text: title}, true
}

var pageLabel = regexp.MustCompile(`(?i)^(page\s+\d+(\s+of\s+\d+)?|\d+)$`)

// FirstPageTitle takes the largest text on the first page, joining every span
// of that size in reading order. The size must pass c's size criterion.
func FirstPageTitle(c *Classifier) TitleStrategy {
	return func(doc *doctree.Document, profile FontProfile) (TitleCandidate, bool) {
		var candidates []doctree.Span
		maxSize := 0.0
		for _, s := range doc.Spans {
			if s.Page != 0 {
				continue
			}
			text := strings.TrimSpace(s.Text)
			if !hasLetter(text) || pageLabel.MatchString(text) {
				continue
			}
			candidates = append(candidates, s)
			if size := roundTenth(s.FontSize); size > maxSize {
				maxSize = size
			}
		}
		if len(candidates) == 0 || !c.IsLarge(maxSize, profile) {
			return TitleCandidate{}, false
		}

		var t TitleCandidate
		var parts []string
		for _, s := range candidates {
			if roundTenth(s.FontSize) == maxSize {
				parts = append(parts, strings.TrimSpace(s.Text))
				t.Orders = append(t.Orders, s.Order)
			}
		}
		t.Text = strings.Join(parts, " ")
		return t, true
	}
}

// FilenameTitle uses the filename without its extension.
func FilenameTitle(doc *doctree.Document, _ FontProfile) (TitleCandidate, bool) {
	if s := stem(doc.Filename); s != "" {
		return TitleCandidate{Text: s}, true
	}
	return TitleCandidate{Text: doc.Filename}, doc.Filename != ""
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
