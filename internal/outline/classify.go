package outline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// ClassifierConfig holds the thresholds of heading detection.
type ClassifierConfig struct {
	// SizeRatio: spans at least this multiple of the mean size are large.
	// Default: 1.1
	SizeRatio float64

	// BoldSizeRatio: bold spans at least this multiple of the mean are headings.
	// Default: 1.2
	BoldSizeRatio float64

	// MaxHeadingWords caps the length of a large-text heading.
	// Default: 15
	MaxHeadingWords int

	// MinChars and MaxChars bound heading text length in characters.
	// Default: 2 and 200
	MinChars int
	MaxChars int
}

// DefaultClassifierConfig returns the standard thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		SizeRatio:       1.1,
		BoldSizeRatio:   1.2,
		MaxHeadingWords: 15,
		MinChars:        2,
		MaxChars:        200,
	}
}

// Classifier decides which spans are headings and at what level.
type Classifier struct {
	config   ClassifierConfig
	patterns *PatternLibrary
}

// NewClassifier creates a classifier. A nil pattern library uses
// DefaultPatterns.
func NewClassifier(config ClassifierConfig, patterns *PatternLibrary) *Classifier {
	if patterns == nil {
		patterns = DefaultPatterns()
	}
	return &Classifier{config: config, patterns: patterns}
}

// Config returns the classifier thresholds.
func (c *Classifier) Config() ClassifierConfig {
	return c.config
}

// IsLarge reports whether size passes the size criterion against profile.
func (c *Classifier) IsLarge(size float64, profile FontProfile) bool {
	return !profile.Empty() && size >= profile.Mean*c.config.SizeRatio
}

// IsLikelyHeading reports whether span is a heading: large and short, shaped
// like a heading, or bold and clearly larger than the mean.
func (c *Classifier) IsLikelyHeading(span doctree.Span, profile FontProfile) bool {
	text := strings.TrimSpace(span.Text)
	n := utf8.RuneCountInString(text)
	if n < c.config.MinChars || n > c.config.MaxChars || !hasLetter(text) {
		return false
	}

	if c.IsLarge(span.FontSize, profile) && len(strings.Fields(text)) <= c.config.MaxHeadingWords {
		return true
	}
	if c.patterns.Match(text) {
		return true
	}
	return span.IsBold && !profile.Empty() && span.FontSize >= profile.Mean*c.config.BoldSizeRatio
}

// Classify returns the headings among spans in reading order. A heading whose
// text already appeared as a heading on the same page is dropped.
func (c *Classifier) Classify(spans []doctree.Span, profile FontProfile) []doctree.Heading {
	type key struct {
		text string
		page int
	}
	seen := make(map[key]bool)

	var headings []doctree.Heading
	for _, s := range spans {
		if !c.IsLikelyHeading(s, profile) {
			continue
		}
		text := strings.TrimSpace(s.Text)
		k := key{text, s.Page}
		if seen[k] {
			continue
		}
		seen[k] = true

		headings = append(headings, doctree.Heading{
			Text:  text,
			Level: profile.Level(s.FontSize),
			Page:  s.Page,
			Order: s.Order,
		})
	}
	return headings
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
