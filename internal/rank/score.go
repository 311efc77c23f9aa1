// Package rank scores document sections against a persona and job, keeps the
// best of them and trims each to its most relevant sentences.
package rank

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/persona"
)

// Weights configures the non-tier parts of the score.
type Weights struct {
	Job        float64 // Per distinct job content word found
	Quality    float64 // Maximum length bonus
	QualityCap int     // Body length, in characters, that earns the full bonus
}

// DefaultWeights returns the standard weights.
func DefaultWeights() Weights {
	return Weights{Job: 2, Quality: 1, QualityCap: 500}
}

// ScoredSection is a section with its relevance score.
type ScoredSection struct {
	Section        doctree.Section
	Score          float64
	ImportanceRank int  // 1-based, set by Rank
	Excluded       bool // A denylisted term was found
}

// Scorer computes relevance for one persona and job description. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	profile  *persona.Profile
	jobWords []string
	deny     []*regexp.Regexp
	weights  Weights
}

// NewScorer prepares a scorer for profile and job.
func NewScorer(profile *persona.Profile, job string, weights Weights) *Scorer {
	return &Scorer{
		profile:  profile,
		jobWords: persona.ContentWords(job),
		deny:     persona.DenyPatterns(profile.Denylist(job)),
		weights:  weights,
	}
}

// Score rates sec. A denylisted term in the title or body zeroes the score
// and marks the section excluded.
func (s *Scorer) Score(sec doctree.Section) ScoredSection {
	out := ScoredSection{Section: sec}
	for _, re := range s.deny {
		if re.MatchString(sec.Title) || re.MatchString(sec.BodyText) {
			out.Excluded = true
			return out
		}
	}

	body := persona.Fold(sec.BodyText)
	var score float64
	for _, tier := range persona.Tiers {
		score += s.profile.Weight(tier) * float64(countFound(body, s.profile.Keywords(tier)))
	}
	score += s.weights.Job * float64(countFound(body, s.jobWords))

	if s.weights.QualityCap > 0 {
		n := utf8.RuneCountInString(strings.TrimSpace(sec.BodyText))
		if n > s.weights.QualityCap {
			n = s.weights.QualityCap
		}
		score += s.weights.Quality * float64(n) / float64(s.weights.QualityCap)
	}

	out.Score = score
	return out
}

// ScoreAll scores every section in input order.
func (s *Scorer) ScoreAll(sections []doctree.Section) []ScoredSection {
	out := make([]ScoredSection, len(sections))
	for i, sec := range sections {
		out[i] = s.Score(sec)
	}
	return out
}

// Keywords returns every term that counts as relevant: the persona's
// keywords of all tiers followed by the job content words.
func (s *Scorer) Keywords() []string {
	var out []string
	for _, tier := range persona.Tiers {
		out = append(out, s.profile.Keywords(tier)...)
	}
	return append(out, s.jobWords...)
}

// countFound counts the distinct terms that occur in folded text.
func countFound(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}
