package types

import "github.com/forkline/forkline/backend/internal/model"

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GenerateRecipeRequest represents the request body for recipe generation
type GenerateRecipeRequest struct {
	Description          string                  `json:"description" binding:"required"`
	Complexity           string                  `json:"complexity,omitempty"`
	TargetMacros         *model.NutritionProfile `json:"target_macros,omitempty"`
	AvailableIngredients []model.Ingredient      `json:"available_ingredients,omitempty"`
}

// GenerateMealPlanRequest represents the request body for weekly meal
// plan generation
type GenerateMealPlanRequest struct {
	Description  string                  `json:"description" binding:"required"`
	TargetMacros *model.NutritionProfile `json:"target_macros,omitempty"`
}

// RegenerateRecipeRequest represents the request body for regenerating a
// stored recipe
type RegenerateRecipeRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ModifyRecipeRequest represents the request body for modifying a stored
// recipe
type ModifyRecipeRequest struct {
	Instructions string `json:"instructions" binding:"required"`
}

// GenerateShoppingListRequest represents the request body for free-form
// shopping list generation
type GenerateShoppingListRequest struct {
	Description          string             `json:"description" binding:"required"`
	AvailableIngredients []model.Ingredient `json:"available_ingredients,omitempty"`
}

// AuthResponse carries a freshly issued token
type AuthResponse struct {
	Token string `json:"token"`
}
