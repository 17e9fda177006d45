// Package compliance implements halal compliance analysis: ingredient
// classification, certification verification, and the product decision
// engine.
package compliance

import (
	"fmt"
	"strings"

	"github.com/halaleco/amanah/internal/domain"
)

// Prohibited substances. Matched as a case-insensitive substring of the
// ingredient name, so "pork gelatin" matches "pork".
var haramIngredients = []string{
	// Animal-derived
	"pork",
	"bacon",
	"ham",
	"lard",
	"pork fat",
	"pork gelatin",
	"pepsin",
	"rennet",
	"carmine",
	"cochineal",
	"shellac",

	// Alcohol and derivatives
	"alcohol",
	"ethanol",
	"wine",
	"beer",
	"rum",
	"whiskey",
	"vanilla extract",
	"wine vinegar",
	"cooking wine",

	// Non-halal animal derivatives
	"non-halal gelatin",
	"non-halal collagen",
	"non-halal tallow",
}

// Doubtful substances that require source verification. Checked only
// after the prohibited list, so a prohibited match always wins.
var mushboohIngredients = []string{
	"mono and diglycerides",
	"lecithin",
	"glycerin",
	"stearic acid",
	"natural flavors",
	"artificial flavors",
	"enzymes",
	"emulsifiers",
}

// Substitutions for specific problem ingredients.
var ingredientAlternatives = map[string][]string{
	"pork":                  {"Halal beef", "Halal chicken", "Halal lamb"},
	"bacon":                 {"Halal beef bacon", "Turkey bacon", "Chicken strips"},
	"lard":                  {"Vegetable oil", "Coconut oil", "Olive oil"},
	"gelatin":               {"Halal gelatin", "Agar-agar", "Pectin", "Carrageenan"},
	"alcohol":               {"Natural extracts", "Halal vanilla", "Fruit concentrates"},
	"wine vinegar":          {"Apple cider vinegar", "Rice vinegar", "Halal vinegar"},
	"mono and diglycerides": {"Halal-certified emulsifiers", "Lecithin (plant-based)"},
	"natural flavors":       {"Halal-certified natural flavors", "Specific flavor extracts"},
}

// ClassifyIngredients maps each ingredient to a compliance status.
// The prohibited list is checked before the doubtful list, and the
// first matching list entry determines the reason text. Classification
// is a pure function of its input.
func ClassifyIngredients(ingredients []string) []domain.IngredientFinding {
	findings := make([]domain.IngredientFinding, 0, len(ingredients))
	for _, ingredient := range ingredients {
		lower := strings.ToLower(ingredient)

		if match := findMatch(lower, haramIngredients); match != "" {
			findings = append(findings, domain.IngredientFinding{
				Ingredient:   ingredient,
				Status:       domain.IngredientHaram,
				Reason:       fmt.Sprintf("Contains %s which is prohibited in Islam", match),
				Alternatives: AlternativesFor(match),
			})
			continue
		}

		if match := findMatch(lower, mushboohIngredients); match != "" {
			findings = append(findings, domain.IngredientFinding{
				Ingredient:   ingredient,
				Status:       domain.IngredientMushbooh,
				Reason:       fmt.Sprintf("%s requires verification of source and processing method", match),
				Alternatives: AlternativesFor(match),
			})
			continue
		}

		findings = append(findings, domain.IngredientFinding{
			Ingredient: ingredient,
			Status:     domain.IngredientHalal,
			Reason:     "No prohibited substances detected",
		})
	}
	return findings
}

// AlternativesFor returns known substitutions for an ingredient, or a
// generated pair of generic suggestions.
func AlternativesFor(ingredient string) []string {
	if alts, ok := ingredientAlternatives[strings.ToLower(ingredient)]; ok {
		return alts
	}
	return []string{
		"Halal-certified " + ingredient,
		"Plant-based " + ingredient,
	}
}

func findMatch(lowerIngredient string, list []string) string {
	for _, entry := range list {
		if strings.Contains(lowerIngredient, entry) {
			return entry
		}
	}
	return ""
}
