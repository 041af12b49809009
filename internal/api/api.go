package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/types"
)

// AuthServiceInterface is the auth surface handlers depend on.
type AuthServiceInterface interface {
	Register(name, email, password string) (string, error)
	Login(email, password string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// RecipeServiceInterface is the recipe surface handlers depend on.
type RecipeServiceInterface interface {
	GenerateRecipe(ctx context.Context, req model.GenerationRequest, userID uuid.UUID) (*model.Recipe, error)
	RegenerateRecipe(ctx context.Context, id uuid.UUID, reason string, userID uuid.UUID) (*model.Recipe, error)
	ModifyRecipe(ctx context.Context, id uuid.UUID, instructions string, userID uuid.UUID) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	ListRecipes(ctx context.Context, userID *uuid.UUID) ([]*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	SearchSimilar(ctx context.Context, query string, limit int) ([]*model.Recipe, error)
}

// MealPlanServiceInterface is the meal plan surface handlers depend on.
type MealPlanServiceInterface interface {
	GenerateMealPlan(ctx context.Context, req model.GenerationRequest, userID uuid.UUID) (*model.MealPlan, error)
	GetMealPlan(ctx context.Context, id uuid.UUID) (*model.MealPlan, error)
	ListMealPlans(ctx context.Context, userID uuid.UUID) ([]*model.MealPlan, error)
	FillSlot(ctx context.Context, planID uuid.UUID, skeletonID string, userID uuid.UUID) (*model.Recipe, error)
}

// ShoppingListServiceInterface is the shopping list surface handlers
// depend on.
type ShoppingListServiceInterface interface {
	ForMealPlan(ctx context.Context, planID uuid.UUID) (*model.ShoppingList, error)
	Generate(ctx context.Context, req model.GenerationRequest) (*model.ShoppingList, error)
}
