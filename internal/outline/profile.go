// Package outline turns a document's span stream into a title, a heading
// outline and the sections between headings.
package outline

import (
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// maxRankedSizes caps heading depth at H6.
const maxRankedSizes = int(doctree.MaxHeadingLevel)

// FontProfile summarises the font sizes of one document. It is the reference
// scale for "large" versus body text.
type FontProfile struct {
	Sizes             []float64 // One entry per non-empty span
	Mean              float64
	DistinctSizesDesc []float64 // At most six, largest first, deduplicated at 0.1pt
}

// NewProfile builds the profile of spans. Whitespace-only spans are ignored.
func NewProfile(spans []doctree.Span) FontProfile {
	var p FontProfile
	var sum float64
	seen := make(map[float64]bool)
	var distinct []float64

	for _, s := range spans {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		p.Sizes = append(p.Sizes, s.FontSize)
		sum += s.FontSize

		key := roundTenth(s.FontSize)
		if !seen[key] {
			seen[key] = true
			distinct = append(distinct, key)
		}
	}
	if len(p.Sizes) == 0 {
		return p
	}

	p.Mean = sum / float64(len(p.Sizes))
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))
	if len(distinct) > maxRankedSizes {
		distinct = distinct[:maxRankedSizes]
	}
	p.DistinctSizesDesc = distinct
	return p
}

// Level maps a font size to a heading level: the index of the first ranked
// size not larger than size, plus one. Sizes below every ranked size get H6.
// Level depends on size alone, so equal sizes always share a level.
func (p FontProfile) Level(size float64) doctree.HeadingLevel {
	size = roundTenth(size)
	for i, ranked := range p.DistinctSizesDesc {
		if ranked <= size {
			return doctree.HeadingLevel(i + 1)
		}
	}
	return doctree.MaxHeadingLevel
}

// Empty reports whether the profile saw no text at all.
func (p FontProfile) Empty() bool {
	return len(p.Sizes) == 0
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
