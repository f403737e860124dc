package planner

import "strings"

// DefaultAllergenGroups maps a restriction keyword to the ingredient words it
// also rules out. Each call returns a fresh map.
func DefaultAllergenGroups() map[string][]string {
	return map[string][]string{
		"shellfish": {"shrimp", "prawn", "crab", "lobster", "crayfish", "scallop", "clam", "mussel", "oyster"},
		"fish":      {"salmon", "tuna", "cod", "tilapia", "trout", "anchovy", "sardine", "halibut", "mackerel"},
		"nuts":      {"almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "macadamia", "peanut"},
		"tree nut":  {"almond", "cashew", "walnut", "pecan", "pistachio", "hazelnut", "macadamia"},
		"dairy":     {"milk", "cheese", "butter", "cream", "yogurt", "ghee"},
		"gluten":    {"wheat", "barley", "rye", "flour", "bread", "pasta", "noodle", "couscous"},
		"soy":       {"tofu", "edamame", "tempeh", "miso"},
		"meat":      {"beef", "pork", "chicken", "lamb", "turkey", "bacon", "ham", "sausage"},
	}
}

// FilterDishes drops every dish whose name, ingredients or nutrition note
// contains one of the restriction keywords, ignoring case. Keywords found in
// groups also exclude their listed terms. Matching is plain substring, so
// "nut" also matches "nutmeg". Order is preserved.
func FilterDishes(dishes []Dish, restrictions []string, groups map[string][]string) []Dish {
	terms := expandRestrictions(restrictions, groups)
	if len(terms) == 0 {
		return append([]Dish(nil), dishes...)
	}

	kept := make([]Dish, 0, len(dishes))
	for _, d := range dishes {
		text := haystack(d)
		excluded := false
		for _, term := range terms {
			if strings.Contains(text, term) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, d)
		}
	}
	return kept
}

func expandRestrictions(restrictions []string, groups map[string][]string) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		terms = append(terms, s)
	}
	for _, r := range restrictions {
		add(r)
		for _, extra := range groups[strings.ToLower(strings.TrimSpace(r))] {
			add(extra)
		}
	}
	return terms
}

func haystack(d Dish) string {
	parts := make([]string, 0, len(d.Ingredients)+2)
	parts = append(parts, d.Name)
	parts = append(parts, d.Ingredients...)
	parts = append(parts, d.Nutrition)
	return strings.ToLower(strings.Join(parts, " "))
}
