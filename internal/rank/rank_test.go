package rank

import (
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/persona"
)

func foodContractor(t *testing.T) *persona.Profile {
	t.Helper()
	p, known := persona.Defaults().Lookup("Food Contractor")
	if !known {
		t.Fatal("expected built-in Food Contractor")
	}
	return p
}

func TestScorer_Formula(t *testing.T) {
	profile := persona.Compile(persona.Definition{
		Name: "Tester",
		KeywordTiers: map[persona.Tier][]string{
			persona.High:   {"alpha", "beta"},
			persona.Medium: {"gamma"},
			persona.Low:    {"delta"},
		},
	})
	s := NewScorer(profile, "find omega quickly", Weights{Job: 2, Quality: 1, QualityCap: 100})

	body := "ALPHA alpha Gamma delta omega " + strings.Repeat("x", 70)
	got := s.Score(doctree.Section{BodyText: body})

	// alpha 3 + gamma 2 + delta 1 + omega 2 + quality 1 (body > cap).
	if got.Score != 9 {
		t.Errorf("expected score 9, got %v", got.Score)
	}
	if got.Excluded {
		t.Error("did not expect exclusion")
	}

	short := s.Score(doctree.Section{BodyText: strings.Repeat("y", 50)})
	if short.Score != 0.5 {
		t.Errorf("expected quality-only score 0.5, got %v", short.Score)
	}
}

func TestScorer_Deterministic(t *testing.T) {
	profile := foodContractor(t)
	job := "Prepare a vegetarian buffet-style dinner menu for a corporate gathering"
	sections := []doctree.Section{
		{Title: "Falafel", BodyText: "A vegetarian recipe for the buffet. Serve at dinner with hummus."},
		{Title: "Ratatouille", BodyText: "Slow cooking brings out the ingredients. Great for catering."},
		{Title: "Salad", BodyText: "Quick ideas for a side."},
	}

	first := NewScorer(profile, job, DefaultWeights()).ScoreAll(sections)
	reversed := []doctree.Section{sections[2], sections[1], sections[0]}
	second := NewScorer(profile, job, DefaultWeights()).ScoreAll(reversed)

	for i := range sections {
		if first[i].Score != second[len(sections)-1-i].Score {
			t.Errorf("section %d: score %v vs %v", i, first[i].Score, second[len(sections)-1-i].Score)
		}
	}
}

func TestScorer_DenylistExcludesDespiteKeywords(t *testing.T) {
	profile := persona.Compile(persona.Definition{
		Name: "Food Contractor",
		KeywordTiers: map[persona.Tier][]string{
			persona.High: {"food", "recipe", "menu", "dinner", "buffet", "catering"},
		},
		Denylist: []string{"chicken"},
	})
	scorer := NewScorer(profile, "Prepare a dinner menu", DefaultWeights())

	sections := []doctree.Section{
		{DocIndex: 0, Title: "Soup", BodyText: "A food recipe for the dinner menu at the buffet, catering grade, made with chicken broth."},
		{DocIndex: 0, Order: 1, Title: "Bread", BodyText: "A simple recipe."},
	}
	scored := scorer.ScoreAll(sections)
	if !scored[0].Excluded || scored[0].Score != 0 {
		t.Fatalf("expected exclusion with zero score, got %+v", scored[0])
	}

	ranked := Rank(scored, 5)
	for _, r := range ranked {
		if r.Section.Title == "Soup" {
			t.Fatalf("excluded section ranked: %+v", ranked)
		}
	}
	if len(ranked) != 1 || ranked[0].ImportanceRank != 1 {
		t.Errorf("expected only Bread at rank 1, got %+v", ranked)
	}
}

func TestScorer_VegetarianJobTriggersDenylist(t *testing.T) {
	scorer := NewScorer(foodContractor(t), "Prepare a vegetarian buffet-style dinner menu", DefaultWeights())

	got := scorer.Score(doctree.Section{Title: "Roast", BodyText: "Roast turkey for the dinner buffet."})
	if !got.Excluded {
		t.Errorf("expected turkey to be excluded for a vegetarian job")
	}
	got = scorer.Score(doctree.Section{Title: "Tour", BodyText: "A dinner buffet near Hamburg."})
	if got.Excluded {
		t.Errorf("did not expect Hamburg to trigger the ham denylist")
	}
}

func TestRank_OrderAndTies(t *testing.T) {
	scored := []ScoredSection{
		{Section: doctree.Section{Title: "c", DocIndex: 1, Page: 0}, Score: 5},
		{Section: doctree.Section{Title: "a", DocIndex: 0, Page: 3}, Score: 5},
		{Section: doctree.Section{Title: "top", DocIndex: 2, Page: 9}, Score: 9},
		{Section: doctree.Section{Title: "b", DocIndex: 0, Page: 3, Order: 4}, Score: 5},
		{Section: doctree.Section{Title: "zero", DocIndex: 0}, Score: 0},
		{Section: doctree.Section{Title: "low", DocIndex: 0}, Score: 1},
	}

	ranked := Rank(scored, 4)
	want := []string{"top", "a", "b", "c"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d ranked, got %+v", len(want), ranked)
	}
	for i, w := range want {
		if ranked[i].Section.Title != w {
			t.Errorf("rank %d: expected %q, got %q", i+1, w, ranked[i].Section.Title)
		}
		if ranked[i].ImportanceRank != i+1 {
			t.Errorf("rank %d: importance rank %d", i+1, ranked[i].ImportanceRank)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Errorf("higher score ranked lower at %d", i)
		}
	}
}

func TestRank_DefaultTopN(t *testing.T) {
	var scored []ScoredSection
	for i := 0; i < 8; i++ {
		scored = append(scored, ScoredSection{Section: doctree.Section{Order: i}, Score: float64(i + 1)})
	}
	if got := Rank(scored, 0); len(got) != DefaultTopN {
		t.Errorf("expected %d sections, got %d", DefaultTopN, len(got))
	}
	if got := Rank(nil, 3); len(got) != 0 {
		t.Errorf("expected no sections, got %d", len(got))
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	profile, _ := persona.Defaults().Lookup("Travel Planner")
	sections := []doctree.Section{
		{DocumentID: "cities.pdf", DocIndex: 0, Order: 0, Title: "Nice", Page: 1,
			BodyText: "Nice is a coastal city. The old town has great restaurants and hotels for any trip. Parking is hard."},
		{DocumentID: "cities.pdf", DocIndex: 0, Order: 1, Title: "History", Page: 2,
			BodyText: "The region changed hands many times."},
		{DocumentID: "food.pdf", DocIndex: 1, Order: 0, Title: "Markets", Page: 0,
			BodyText: "Local markets sell cheese. Visit early for the best experience."},
	}

	a := Analyze(sections, profile, "Plan a trip of 4 days for 10 college friends", DefaultOptions())
	if len(a.Ranked) != 3 || len(a.Extracts) != 3 {
		t.Fatalf("expected 3 ranked sections and extracts, got %d and %d", len(a.Ranked), len(a.Extracts))
	}
	if a.Ranked[0].Section.Title != "Nice" {
		t.Errorf("expected Nice first, got %q", a.Ranked[0].Section.Title)
	}
	if got := a.Extracts[0].RefinedText; got != "The old town has great restaurants and hotels for any trip." {
		t.Errorf("unexpected refined text %q", got)
	}
	for i := range a.Ranked {
		if a.Extracts[i].Section != a.Ranked[i].Section {
			t.Errorf("extract %d does not follow ranking", i)
		}
	}
}
