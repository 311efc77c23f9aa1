// Package persona holds the keyword profiles that describe what a user role
// cares about.
package persona

import (
	"regexp"
	"sort"
	"strings"
)

// Tier is a keyword priority band.
type Tier string

const (
	High   Tier = "high"
	Medium Tier = "medium"
	Low    Tier = "low"
)

// Tiers lists every tier in scoring order.
var Tiers = []Tier{High, Medium, Low}

// DefaultTierWeights are used for tiers a profile does not weight itself.
var DefaultTierWeights = map[Tier]float64{High: 3, Medium: 2, Low: 1}

// Definition is the declarative form of a profile, as written in a persona file.
type Definition struct {
	Name         string              `yaml:"name" validate:"required"`
	Aliases      []string            `yaml:"aliases" validate:"dive,required"`
	KeywordTiers map[Tier][]string   `yaml:"keyword_tiers" validate:"required,min=1,dive,keys,oneof=high medium low,endkeys,min=1,dive,required"`
	TierWeights  map[Tier]float64    `yaml:"tier_weights" validate:"dive,keys,oneof=high medium low,endkeys,gte=0"`
	Denylist     []string            `yaml:"denylist" validate:"dive,required"`
	JobDenylists map[string][]string `yaml:"job_denylists" validate:"dive,keys,required,endkeys,min=1,dive,required"`
}

// Profile is a compiled, read-only persona. Keywords are folded, deduplicated
// and sorted so scoring visits them in a fixed order.
type Profile struct {
	name         string
	keywords     map[Tier][]string
	weights      map[Tier]float64
	denylist     []string
	jobDenylists map[string][]string
}

// Compile builds a Profile from def.
func Compile(def Definition) *Profile {
	p := &Profile{
		name:         strings.TrimSpace(def.Name),
		keywords:     make(map[Tier][]string, len(Tiers)),
		weights:      make(map[Tier]float64, len(Tiers)),
		denylist:     normalizeTerms(def.Denylist),
		jobDenylists: make(map[string][]string, len(def.JobDenylists)),
	}
	for _, t := range Tiers {
		p.keywords[t] = normalizeTerms(def.KeywordTiers[t])
		if w, ok := def.TierWeights[t]; ok {
			p.weights[t] = w
		} else {
			p.weights[t] = DefaultTierWeights[t]
		}
	}
	for trigger, terms := range def.JobDenylists {
		p.jobDenylists[Fold(strings.TrimSpace(trigger))] = normalizeTerms(terms)
	}
	return p
}

// Name returns the persona name.
func (p *Profile) Name() string { return p.name }

// Keywords returns the folded keywords of tier t in sorted order.
func (p *Profile) Keywords(t Tier) []string { return p.keywords[t] }

// Weight returns the weight of tier t.
func (p *Profile) Weight(t Tier) float64 { return p.weights[t] }

// Denylist returns the terms that exclude a section for the given job
// description: the profile's own denylist plus every job denylist whose
// trigger appears as a whole word in job.
func (p *Profile) Denylist(job string) []string {
	terms := append([]string(nil), p.denylist...)

	triggers := make([]string, 0, len(p.jobDenylists))
	for trigger := range p.jobDenylists {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)

	folded := Fold(job)
	for _, trigger := range triggers {
		if wordPattern(trigger).MatchString(folded) {
			terms = append(terms, p.jobDenylists[trigger]...)
		}
	}
	return normalizeTerms(terms)
}

// DenyPatterns compiles terms into whole-word matchers that also accept a
// plural "s" or "es", so "ham" matches "hams" but not "Hamburg".
func DenyPatterns(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		out = append(out, wordPattern(t))
	}
	return out
}

func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `(s|es)?\b`)
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = Fold(strings.Join(strings.Fields(t), " "))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
