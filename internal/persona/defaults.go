package persona

var meatAndSeafood = []string{
	"beef", "pork", "chicken", "fish", "salmon", "tuna", "shrimp",
	"meat", "bacon", "ham", "sausage", "turkey", "lamb", "seafood",
}

var glutenSources = []string{
	"wheat", "barley", "rye", "bulgur", "couscous", "seitan",
}

// DefaultDefinitions are the built-in personas.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:    "Travel Planner",
			Aliases: []string{"travel agent", "trip planner"},
			KeywordTiers: map[Tier][]string{
				High: {"travel", "trip", "vacation", "hotel", "restaurant", "tourism", "destination",
					"itinerary", "attractions", "activities", "sightseeing", "accommodation"},
				Medium: {"culture", "history", "food", "local", "guide", "places", "visit", "explore", "experience"},
				Low:    {"information", "tips", "advice", "recommendations"},
			},
		},
		{
			Name:    "HR professional",
			Aliases: []string{"hr", "human resources"},
			KeywordTiers: map[Tier][]string{
				High: {"form", "forms", "fillable", "onboarding", "compliance", "employee", "human resources",
					"signature", "e-signature", "document"},
				Medium: {"create", "convert", "edit", "export", "share", "pdf", "acrobat", "workflow"},
				Low:    {"training", "skills", "learning", "tutorial"},
			},
		},
		{
			Name:    "Food Contractor",
			Aliases: []string{"caterer", "catering manager"},
			KeywordTiers: map[Tier][]string{
				High: {"food", "recipe", "cooking", "menu", "dinner", "meal", "vegetarian", "gluten-free",
					"buffet", "catering", "ingredients"},
				Medium: {"preparation", "kitchen", "service", "dietary", "nutrition", "cuisine"},
				Low:    {"ideas", "tips", "suggestions"},
			},
			JobDenylists: map[string][]string{
				"vegetarian":  meatAndSeafood,
				"vegan":       append(append([]string{}, meatAndSeafood...), "egg", "cheese", "milk", "butter", "honey"),
				"gluten-free": glutenSources,
			},
		},
	}
}
