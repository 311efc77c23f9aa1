package outline

import (
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func spansOf(sizes ...float64) []doctree.Span {
	spans := make([]doctree.Span, len(sizes))
	for i, s := range sizes {
		spans[i] = doctree.Span{Text: "text", FontSize: s, Order: i}
	}
	return spans
}

func TestNewProfile_MeanAndDistinct(t *testing.T) {
	spans := spansOf(10, 10, 12, 18, 12.04)
	spans = append(spans, doctree.Span{Text: "   ", FontSize: 40, Order: 5})

	p := NewProfile(spans)
	if len(p.Sizes) != 5 {
		t.Fatalf("expected 5 sizes (whitespace span excluded), got %d", len(p.Sizes))
	}
	wantMean := (10 + 10 + 12 + 18 + 12.04) / 5
	if p.Mean != wantMean {
		t.Errorf("expected mean %v, got %v", wantMean, p.Mean)
	}
	want := []float64{18, 12, 10}
	if len(p.DistinctSizesDesc) != len(want) {
		t.Fatalf("expected distinct %v, got %v", want, p.DistinctSizesDesc)
	}
	for i := range want {
		if p.DistinctSizesDesc[i] != want[i] {
			t.Errorf("distinct[%d]: expected %v, got %v", i, want[i], p.DistinctSizesDesc[i])
		}
	}
}

func TestNewProfile_CapsAtSixSizes(t *testing.T) {
	p := NewProfile(spansOf(30, 28, 26, 24, 22, 20, 18, 16, 10))
	if len(p.DistinctSizesDesc) != 6 {
		t.Fatalf("expected 6 ranked sizes, got %v", p.DistinctSizesDesc)
	}
	if p.DistinctSizesDesc[5] != 20 {
		t.Errorf("expected smallest ranked size 20, got %v", p.DistinctSizesDesc[5])
	}
}

func TestNewProfile_Empty(t *testing.T) {
	p := NewProfile(nil)
	if !p.Empty() || p.Mean != 0 {
		t.Errorf("expected empty profile, got %+v", p)
	}
	if p.Level(12) != doctree.MaxHeadingLevel {
		t.Errorf("expected H6 for empty profile, got %v", p.Level(12))
	}
}

func TestFontProfile_Level(t *testing.T) {
	p := NewProfile(spansOf(24, 18, 14, 11))

	cases := []struct {
		size float64
		want doctree.HeadingLevel
	}{
		{30, 1},
		{24, 1},
		{20, 2},
		{18, 2},
		{14, 3},
		{11, 4},
		{9, 6},
	}
	for _, c := range cases {
		if got := p.Level(c.size); got != c.want {
			t.Errorf("Level(%v): expected %v, got %v", c.size, c.want, got)
		}
	}
}

func TestFontProfile_LevelMonotonic(t *testing.T) {
	sizes := []float64{36, 7, 28.5, 9, 11, 11, 14, 16, 18, 20, 22, 24, 8.5, 10}
	p := NewProfile(spansOf(sizes...))

	for _, a := range sizes {
		for _, b := range sizes {
			if a >= b && p.Level(a) > p.Level(b) {
				t.Errorf("size %v got %v, deeper than smaller size %v at %v", a, p.Level(a), b, p.Level(b))
			}
		}
	}
	for _, s := range sizes {
		if l := p.Level(s); l < 1 || l > doctree.MaxHeadingLevel {
			t.Errorf("size %v: level %v out of range", s, l)
		}
	}
}
