package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkline/forkline/backend/internal/model"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCompile(t *testing.T) {
	t.Run("should emit only the instruction line for a bare request", func(t *testing.T) {
		out := Compile(model.GenerationRequest{
			Kind:        model.RequestRecipeGeneration,
			Description: "a quick vegetarian dinner",
		})

		assert.Equal(t, "Recipe request: a quick vegetarian dinner", out)
		assert.NotContains(t, out, "\n")
	})

	t.Run("should be deterministic", func(t *testing.T) {
		req := model.GenerationRequest{
			Kind:        model.RequestRecipeGeneration,
			Description: "pasta",
			Complexity:  "easy",
			TargetMacros: &model.NutritionProfile{
				Calories:     intPtr(600),
				ProteinGrams: floatPtr(30),
			},
			AvailableIngredients: []model.Ingredient{
				{Name: "penne", Quantity: 500, Unit: "g"},
			},
		}

		assert.Equal(t, Compile(req), Compile(req))
	})

	t.Run("should render every present macro exactly once in fixed order", func(t *testing.T) {
		req := model.GenerationRequest{
			Kind:        model.RequestRecipeGeneration,
			Description: "bulking meal",
			TargetMacros: &model.NutritionProfile{
				Calories:     intPtr(800),
				ProteinGrams: floatPtr(45.5),
				CarbsGrams:   floatPtr(90),
				FatGrams:     floatPtr(25),
				FiberGrams:   floatPtr(12),
				SugarGrams:   floatPtr(20),
				SodiumMg:     floatPtr(600),
			},
		}

		out := Compile(req)
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 2)

		macros := lines[1]
		assert.Contains(t, macros, "calories=800, protein=45.5g, carbs=90g, fat=25g, fiber=12g, sugar=20g, sodium=600mg")
		assert.Equal(t, 1, strings.Count(macros, "calories="))
		assert.Equal(t, 1, strings.Count(macros, "protein="))
	})

	t.Run("should state the whole-recipe totals convention", func(t *testing.T) {
		out := Compile(model.GenerationRequest{
			Kind:         model.RequestRecipeGeneration,
			Description:  "soup",
			TargetMacros: &model.NutritionProfile{Calories: intPtr(400)},
		})

		assert.Contains(t, out, "totals for the whole recipe")
	})

	t.Run("should omit the macro line when profile is present but empty", func(t *testing.T) {
		out := Compile(model.GenerationRequest{
			Kind:         model.RequestRecipeGeneration,
			Description:  "soup",
			TargetMacros: &model.NutritionProfile{},
		})

		assert.Equal(t, "Recipe request: soup", out)
		assert.NotContains(t, out, "Target macros")
	})

	t.Run("should render ingredients with optional unit and notes", func(t *testing.T) {
		out := Compile(model.GenerationRequest{
			Kind:        model.RequestRecipeGeneration,
			Description: "stir fry",
			AvailableIngredients: []model.Ingredient{
				{Name: "rice", Quantity: 2, Unit: "cups"},
				{Name: "eggs", Quantity: 3},
				{Name: "soy sauce", Quantity: 1.5, Unit: "tbsp", Notes: "low sodium"},
			},
		})

		assert.Contains(t, out, "Available ingredients: 2 cups rice, 3 eggs, 1.5 tbsp soy sauce (low sodium)")
	})

	t.Run("should include regeneration reason only when present", func(t *testing.T) {
		with := Compile(model.GenerationRequest{
			Kind:               model.RequestRecipeRegeneration,
			Description:        "Lentil Curry",
			RegenerationReason: "too spicy",
		})
		assert.Contains(t, with, "Regeneration reason: too spicy")

		without := Compile(model.GenerationRequest{
			Kind:        model.RequestRecipeRegeneration,
			Description: "Lentil Curry",
		})
		assert.NotContains(t, without, "Regeneration reason")
	})

	t.Run("should render modification instructions", func(t *testing.T) {
		out := Compile(model.GenerationRequest{
			Kind:                     model.RequestRecipeModification,
			Description:              "Lasagna",
			ModificationInstructions: "make it gluten free",
		})

		assert.True(t, strings.HasPrefix(out, "Modify this recipe: Lasagna"))
		assert.Contains(t, out, "Requested changes: make it gluten free")
	})
}
