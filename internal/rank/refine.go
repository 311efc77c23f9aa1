package rank

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/persona"
)

// RefineConfig bounds refined extracts.
type RefineConfig struct {
	MaxChars   int // Length cap of the refined text
	MinOverlap int // Distinct keywords a sentence needs to be kept
}

// DefaultRefineConfig returns the standard limits.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{MaxChars: 1000, MinOverlap: 1}
}

// RefinedExtract is the keyword-dense subset of a section's text.
type RefinedExtract struct {
	Section     doctree.Section
	RefinedText string
}

// Refiner keeps the sentences of a section that mention enough keywords.
type Refiner struct {
	keywords []string
	config   RefineConfig
}

// NewRefiner creates a refiner over keywords, typically Scorer.Keywords().
func NewRefiner(keywords []string, config RefineConfig) *Refiner {
	if config.MaxChars <= 0 {
		config.MaxChars = DefaultRefineConfig().MaxChars
	}
	if config.MinOverlap <= 0 {
		config.MinOverlap = 1
	}
	return &Refiner{keywords: keywords, config: config}
}

// Refine returns the sentences of sec whose keyword overlap reaches the
// minimum, in original order and capped in length. When no sentence
// qualifies it returns the leading sentences up to the cap. It never fails;
// an empty body yields the section title.
func (r *Refiner) Refine(sec doctree.Section) RefinedExtract {
	out := RefinedExtract{Section: sec}

	sentences := splitSentences(sec.BodyText)
	if len(sentences) == 0 {
		out.RefinedText = truncate(sec.Title, r.config.MaxChars)
		return out
	}

	var kept []string
	for _, s := range sentences {
		if countFound(persona.Fold(s), r.keywords) >= r.config.MinOverlap {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		kept = sentences
	}

	out.RefinedText = truncate(strings.Join(kept, " "), r.config.MaxChars)
	return out
}

// splitSentences splits text at period, question or exclamation marks that
// are followed by whitespace or the end of the text.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				if s := strings.TrimSpace(cur.String()); s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// truncate cuts text to at most max runes, backing up to a word boundary
// when one exists in the second half.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := max
	for i := max; i > max/2; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut]))
}
