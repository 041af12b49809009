// Package prompt renders structured generation requests into the
// instruction strings sent to the agent. Compilation is pure: the same
// request always produces byte-identical output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/forkline/forkline/backend/internal/model"
)

// Compile renders a structured request into the user instruction for the
// generation agent. Lines appear in a fixed order and a line is only
// emitted when it has content; absent optional fields leave no trace.
func Compile(req model.GenerationRequest) string {
	var lines []string

	lines = append(lines, instructionLine(req))

	if req.Complexity != "" {
		lines = append(lines, "Desired complexity: "+req.Complexity)
	}

	if req.TargetMacros != nil {
		if macros := macroLine(*req.TargetMacros); macros != "" {
			lines = append(lines, macros)
		}
	}

	if len(req.AvailableIngredients) > 0 {
		parts := make([]string, 0, len(req.AvailableIngredients))
		for _, ing := range req.AvailableIngredients {
			parts = append(parts, ingredientPart(ing))
		}
		lines = append(lines, "Available ingredients: "+strings.Join(parts, ", "))
	}

	return strings.Join(lines, "\n")
}

func instructionLine(req model.GenerationRequest) string {
	switch req.Kind {
	case model.RequestWeeklyMealPlan:
		return "Weekly meal plan request: " + req.Description
	case model.RequestRecipeRegeneration:
		line := "Regenerate this recipe from scratch: " + req.Description
		if req.RegenerationReason != "" {
			line += "\nRegeneration reason: " + req.RegenerationReason
		}
		return line
	case model.RequestRecipeModification:
		line := "Modify this recipe: " + req.Description
		if req.ModificationInstructions != "" {
			line += "\nRequested changes: " + req.ModificationInstructions
		}
		return line
	case model.RequestShoppingList:
		return "Shopping list request: " + req.Description
	default:
		return "Recipe request: " + req.Description
	}
}

// macroLine renders the present target-nutrition fields in a fixed order.
// It returns "" when every field is absent so the caller can skip the
// line entirely. The trailing note pins down that figures are totals for
// the whole recipe, not per serving.
func macroLine(p model.NutritionProfile) string {
	var parts []string

	if p.Calories != nil {
		parts = append(parts, fmt.Sprintf("calories=%d", *p.Calories))
	}
	if p.ProteinGrams != nil {
		parts = append(parts, fmt.Sprintf("protein=%sg", trimFloat(*p.ProteinGrams)))
	}
	if p.CarbsGrams != nil {
		parts = append(parts, fmt.Sprintf("carbs=%sg", trimFloat(*p.CarbsGrams)))
	}
	if p.FatGrams != nil {
		parts = append(parts, fmt.Sprintf("fat=%sg", trimFloat(*p.FatGrams)))
	}
	if p.FiberGrams != nil {
		parts = append(parts, fmt.Sprintf("fiber=%sg", trimFloat(*p.FiberGrams)))
	}
	if p.SugarGrams != nil {
		parts = append(parts, fmt.Sprintf("sugar=%sg", trimFloat(*p.SugarGrams)))
	}
	if p.SodiumMg != nil {
		parts = append(parts, fmt.Sprintf("sodium=%smg", trimFloat(*p.SodiumMg)))
	}

	if len(parts) == 0 {
		return ""
	}
	return "Target macros (totals for the whole recipe, all servings combined): " + strings.Join(parts, ", ")
}

func ingredientPart(ing model.Ingredient) string {
	var part string
	if ing.Unit != "" {
		part = fmt.Sprintf("%s %s %s", trimFloat(ing.Quantity), ing.Unit, ing.Name)
	} else {
		part = fmt.Sprintf("%s %s", trimFloat(ing.Quantity), ing.Name)
	}
	if ing.Notes != "" {
		part += " (" + ing.Notes + ")"
	}
	return part
}

// trimFloat formats a quantity without a spurious trailing ".0".
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
