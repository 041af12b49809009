package model

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingItem is one aggregated line on a shopping list.
type ShoppingItem struct {
	IngredientName   string   `json:"ingredient_name"`
	TotalQuantity    float64  `json:"total_quantity"`
	Unit             string   `json:"unit,omitempty"`
	NeededForRecipes []string `json:"needed_for_recipes"`
}

// ShoppingList aggregates the ingredients of a meal plan's linked recipes.
// It is computed on demand and returned to the caller, never stored.
type ShoppingList struct {
	MealPlanID  uuid.UUID      `json:"meal_plan_id"`
	Items       []ShoppingItem `json:"items"`
	GeneratedAt time.Time      `json:"generated_at"`
}
