package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/model"
)

func TestAggregateShoppingItems(t *testing.T) {
	soupID := uuid.New().String()
	saladID := uuid.New().String()

	recipes := map[string]*model.Recipe{
		soupID: {
			Ingredients: model.IngredientList{
				{Name: "Onion", Quantity: 1, Unit: "whole"},
				{Name: "olive oil", Quantity: 2, Unit: "tbsp"},
			},
		},
		saladID: {
			Ingredients: model.IngredientList{
				{Name: "onion", Quantity: 0.5, Unit: "whole"},
				{Name: "olive oil", Quantity: 3, Unit: "tbsp"},
				{Name: "lettuce", Quantity: 1, Unit: "head"},
			},
		},
	}
	skeletons := []model.RecipeSkeleton{
		{SkeletonID: "mon-dinner", RecipeID: soupID},
		{SkeletonID: "tue-lunch", RecipeID: saladID},
		{SkeletonID: "wed-dinner"}, // unfilled slot
	}

	items := AggregateShoppingItems(skeletons, recipes)
	require.Len(t, items, 3)

	// Sorted by name, then unit. Case-insensitive merge keeps the first
	// spelling seen.
	assert.Equal(t, "Onion", items[0].IngredientName)
	assert.Equal(t, 1.5, items[0].TotalQuantity)
	assert.ElementsMatch(t, []string{soupID, saladID}, items[0].NeededForRecipes)

	assert.Equal(t, "lettuce", items[1].IngredientName)
	assert.Equal(t, []string{saladID}, items[1].NeededForRecipes)

	assert.Equal(t, "olive oil", items[2].IngredientName)
	assert.Equal(t, 5.0, items[2].TotalQuantity)
}

func TestAggregateShoppingItemsKeepsUnitsApart(t *testing.T) {
	id := uuid.New().String()
	recipes := map[string]*model.Recipe{
		id: {
			Ingredients: model.IngredientList{
				{Name: "flour", Quantity: 2, Unit: "cups"},
				{Name: "flour", Quantity: 100, Unit: "g"},
			},
		},
	}

	items := AggregateShoppingItems([]model.RecipeSkeleton{{SkeletonID: "s", RecipeID: id}}, recipes)
	require.Len(t, items, 2)
	assert.Equal(t, "g", items[0].Unit)
	assert.Equal(t, "cups", items[1].Unit)
}

func TestShoppingListGenerate(t *testing.T) {
	draft := ShoppingListDraft{
		Items: []model.ShoppingItem{
			{IngredientName: "rolled oats", TotalQuantity: 500, Unit: "g"},
		},
	}
	payload, err := json.Marshal(draft)
	require.NoError(t, err)

	chat := newScriptedChat(t, string(payload))
	svc := NewShoppingListService(agent.NewOrchestratorForEndpoint(chat.URL, "test-key"), nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	list, err := svc.Generate(context.Background(), model.GenerationRequest{
		Kind:        model.RequestShoppingList,
		Description: "a week of oatmeal breakfasts",
	})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, list.MealPlanID)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "rolled oats", list.Items[0].IngredientName)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), list.GeneratedAt)
}
