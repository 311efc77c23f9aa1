package persona

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCompile_NormalizesKeywords(t *testing.T) {
	p := Compile(Definition{
		Name: " Chef ",
		KeywordTiers: map[Tier][]string{
			High: {"Recipe", "recipe", "  Main   Course ", ""},
			Low:  {"tips"},
		},
		TierWeights: map[Tier]float64{High: 5},
	})

	if p.Name() != "Chef" {
		t.Errorf("expected trimmed name, got %q", p.Name())
	}
	if got, want := p.Keywords(High), []string{"main course", "recipe"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected high keywords %v, got %v", want, got)
	}
	if len(p.Keywords(Medium)) != 0 {
		t.Errorf("expected no medium keywords, got %v", p.Keywords(Medium))
	}
	if p.Weight(High) != 5 || p.Weight(Medium) != 2 || p.Weight(Low) != 1 {
		t.Errorf("unexpected weights %v %v %v", p.Weight(High), p.Weight(Medium), p.Weight(Low))
	}
}

func TestProfile_JobDenylist(t *testing.T) {
	p, known := Defaults().Lookup("food contractor")
	if !known {
		t.Fatal("expected built-in Food Contractor")
	}

	if got := p.Denylist("Prepare a dinner menu for the office party"); len(got) != 0 {
		t.Errorf("expected no denylist without a trigger, got %v", got)
	}

	terms := p.Denylist("Prepare a Vegetarian buffet-style dinner menu")
	for _, want := range []string{"chicken", "seafood", "ham"} {
		found := false
		for _, term := range terms {
			if term == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q in denylist %v", want, terms)
		}
	}

	both := p.Denylist("A vegetarian and gluten-free buffet")
	if len(both) != len(meatAndSeafood)+len(glutenSources) {
		t.Errorf("expected combined denylist, got %v", both)
	}
}

func TestDenyPatterns_WholeWords(t *testing.T) {
	re := DenyPatterns([]string{"ham", "fish"})
	cases := map[string]bool{
		"Glazed ham with cloves":      true,
		"Two hams for the holiday":    true,
		"FISHES of the bay":           true,
		"A day trip to Hamburg":       false,
		"Selfish reasons to travel":   false,
		"Shellfish are not mentioned": false,
	}
	for text, want := range cases {
		got := false
		for _, r := range re {
			if r.MatchString(text) {
				got = true
			}
		}
		if got != want {
			t.Errorf("%q: expected %v, got %v", text, want, got)
		}
	}
}

func TestLibrary_LookupUnknownPersona(t *testing.T) {
	lib := Defaults()

	p, known := lib.Lookup("Marine Biologist")
	if known {
		t.Fatal("expected unknown persona")
	}
	if got, want := p.Keywords(Low), []string{"biologist", "marine"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected generic keywords %v, got %v", want, got)
	}
	if p.Name() != "Marine Biologist" {
		t.Errorf("expected name preserved, got %q", p.Name())
	}
}

func TestLibrary_AliasesAndNames(t *testing.T) {
	lib := Defaults()
	p, known := lib.Lookup("  TRAVEL   planner ")
	if !known || p.Name() != "Travel Planner" {
		t.Errorf("expected Travel Planner, got %q known=%v", p.Name(), known)
	}
	if p, _ := lib.Lookup("caterer"); p.Name() != "Food Contractor" {
		t.Errorf("expected alias to resolve, got %q", p.Name())
	}
	want := []string{"Food Contractor", "HR professional", "Travel Planner"}
	if got := lib.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected names %v, got %v", want, got)
	}
}

func TestLoad_OverridesAndAdds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	content := `personas:
  - name: Travel Planner
    keyword_tiers:
      high: [beach]
  - name: Investment Analyst
    keyword_tiers:
      high: [revenue, "r&d"]
      medium: [market]
    tier_weights:
      high: 4
    denylist: [rumor]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	travel, _ := lib.Lookup("travel planner")
	if got := travel.Keywords(High); !reflect.DeepEqual(got, []string{"beach"}) {
		t.Errorf("expected override, got %v", got)
	}
	analyst, known := lib.Lookup("investment analyst")
	if !known {
		t.Fatal("expected file persona to be known")
	}
	if analyst.Weight(High) != 4 {
		t.Errorf("expected weight 4, got %v", analyst.Weight(High))
	}
	if got := analyst.Denylist("anything"); !reflect.DeepEqual(got, []string{"rumor"}) {
		t.Errorf("expected denylist [rumor], got %v", got)
	}
	if len(lib.Names()) != 4 {
		t.Errorf("expected 4 personas, got %v", lib.Names())
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty":       "personas: []\n",
		"no name":     "personas:\n  - keyword_tiers:\n      high: [x]\n",
		"bad tier":    "personas:\n  - name: X\n    keyword_tiers:\n      urgent: [x]\n",
		"not yaml":    "personas: [\n",
		"no keywords": "personas:\n  - name: X\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestContentWords(t *testing.T) {
	got := ContentWords("Plan a trip of 4 days for a group of 10 college friends, with their friends.")
	want := []string{"plan", "trip", "days", "group", "college", "friends"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
