package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/model"
)

// RecipeDraft is the agent's target schema for recipe generation: the
// recipe content without identifiers or bookkeeping, which the assembler
// fills in afterwards.
type RecipeDraft struct {
	Title           string                     `json:"title"`
	Description     string                     `json:"description"`
	Ingredients     []model.Ingredient         `json:"ingredients"`
	Instructions    []model.InstructionSection `json:"instructions"`
	PrepTimeMinutes int                        `json:"prep_time_minutes"`
	CookTimeMinutes int                        `json:"cook_time_minutes"`
	Nutrition       model.NutritionProfile     `json:"nutrition"`
	Servings        int                        `json:"servings"`
	ServingSize     string                     `json:"serving_size,omitempty"`
	Citations       []string                   `json:"citations,omitempty"`
}

// RecipeSchema is the schema recipe generations must conform to.
var RecipeSchema = agent.Schema{
	Name: "Recipe",
	Description: `{
    "title": "Recipe title",
    "description": "Brief description of the recipe",
    "ingredients": [{"name": "flour", "quantity": 2, "unit": "cups", "notes": "optional notes"}],
    "instructions": [{"section_name": "Preparation", "steps": ["Step 1...", "Step 2..."]}],
    "prep_time_minutes": 15,
    "cook_time_minutes": 30,
    "nutrition": {"calories": 1200, "protein_grams": 45, "carbs_grams": 90, "fat_grams": 40, "fiber_grams": 12, "sugar_grams": 10, "sodium_mg": 800},
    "servings": 4,
    "serving_size": "1 bowl",
    "citations": ["https://example.com/inspiration"]
}

Nutrition values are totals for the entire recipe, all servings combined.`,
	Required: []string{"title", "ingredients", "instructions", "servings"},
	New:      func() interface{} { return &RecipeDraft{} },
}

// MealPlanDraft is the agent's target schema for weekly meal plan
// generation.
type MealPlanDraft struct {
	Recipes []model.RecipeSkeleton `json:"recipes"`
}

// MealPlanSchema is the schema meal plan generations must conform to.
var MealPlanSchema = agent.Schema{
	Name: "MealPlan",
	Description: `{
    "recipes": [{
        "skeleton_id": "short unique id",
        "title": "Recipe title",
        "target_calories_per_serving": 600,
        "servings": 2,
        "macro_percentages": {"protein_percent": 30, "carb_percent": 40, "fat_percent": 30},
        "dates": {"person-id": ["2025-01-06T00:00:00Z"]},
        "meal_type": "one of: breakfast, lunch, dinner, snack, dessert"
    }]
}

Dates must be RFC3339 timestamps.`,
	Required: []string{"recipes"},
	New:      func() interface{} { return &MealPlanDraft{} },
}

// ShoppingListDraft is the agent's target schema for free-form shopping
// list generation.
type ShoppingListDraft struct {
	Items []model.ShoppingItem `json:"items"`
}

// ShoppingListSchema is the schema shopping list generations must
// conform to.
var ShoppingListSchema = agent.Schema{
	Name: "ShoppingList",
	Description: `{
    "items": [{"ingredient_name": "flour", "total_quantity": 2, "unit": "cups", "needed_for_recipes": ["recipe-id"]}]
}`,
	Required: []string{"items"},
	New:      func() interface{} { return &ShoppingListDraft{} },
}

// assembleRecipe merges a validated draft and its optional enrichment
// into the final recipe. Pure merge: identifiers and timestamps come from
// the caller's scope, the image URL may be empty when enrichment failed.
func assembleRecipe(draft *RecipeDraft, userID uuid.UUID, imageURL string) *model.Recipe {
	return &model.Recipe{
		ID:              uuid.New(),
		Title:           draft.Title,
		Description:     draft.Description,
		Ingredients:     model.IngredientList(draft.Ingredients),
		Instructions:    model.InstructionList(draft.Instructions),
		PrepTimeMinutes: draft.PrepTimeMinutes,
		CookTimeMinutes: draft.CookTimeMinutes,
		Nutrition:       draft.Nutrition,
		NutritionBasis:  model.NutritionBasisTotal,
		Servings:        draft.Servings,
		ServingSize:     draft.ServingSize,
		Citations:       model.JSONBStringArray(draft.Citations),
		ImageURL:        imageURL,
		Embedding:       GenerateEmbedding(draft.Title + " " + draft.Description),
		UserID:          userID,
	}
}

// assembleMealPlan merges a validated meal plan draft into the final
// plan for the owning user.
func assembleMealPlan(draft *MealPlanDraft, userID uuid.UUID) *model.MealPlan {
	return &model.MealPlan{
		ID:      uuid.New(),
		UserID:  userID,
		Recipes: model.SkeletonList(draft.Recipes),
	}
}

// assembleShoppingList stamps a generated or aggregated item list.
func assembleShoppingList(mealPlanID uuid.UUID, items []model.ShoppingItem, now time.Time) *model.ShoppingList {
	return &model.ShoppingList{
		MealPlanID:  mealPlanID,
		Items:       items,
		GeneratedAt: now,
	}
}
