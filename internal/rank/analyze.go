package rank

import (
	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/persona"
)

// Options configures Analyze.
type Options struct {
	TopN    int
	Weights Weights
	Refine  RefineConfig
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		TopN:    DefaultTopN,
		Weights: DefaultWeights(),
		Refine:  DefaultRefineConfig(),
	}
}

// Analysis is the ranked and refined view of a set of sections.
type Analysis struct {
	Ranked   []ScoredSection
	Extracts []RefinedExtract // One per ranked section, same order
}

// Analyze scores sections against profile and job, ranks them and refines
// the survivors.
func Analyze(sections []doctree.Section, profile *persona.Profile, job string, opts Options) Analysis {
	scorer := NewScorer(profile, job, opts.Weights)
	ranked := Rank(scorer.ScoreAll(sections), opts.TopN)

	refiner := NewRefiner(scorer.Keywords(), opts.Refine)
	extracts := make([]RefinedExtract, len(ranked))
	for i, s := range ranked {
		extracts[i] = refiner.Refine(s.Section)
	}
	return Analysis{Ranked: ranked, Extracts: extracts}
}
