package model

// RequestKind discriminates the structured request union.
type RequestKind string

const (
	RequestRecipeGeneration   RequestKind = "recipe_generation"
	RequestWeeklyMealPlan     RequestKind = "weekly_meal_plan"
	RequestRecipeRegeneration RequestKind = "recipe_regeneration"
	RequestRecipeModification RequestKind = "recipe_modification"
	RequestShoppingList       RequestKind = "shopping_list"
)

// GenerationRequest is the structured description of what the caller wants
// generated. Exactly one Kind applies; fields that do not belong to that
// kind are left at their zero value and are never rendered into prompts.
type GenerationRequest struct {
	Kind                     RequestKind
	Description              string
	Complexity               string
	RegenerationReason       string
	ModificationInstructions string
	TargetMacros             *NutritionProfile
	AvailableIngredients     []Ingredient
}
