package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/prompt"
)

// shoppingSystemPrompt frames free-form shopping list generation, used
// when there is no meal plan to aggregate from.
const shoppingSystemPrompt = `You are a professional chef preparing a grocery run. Turn the request into a consolidated shopping list: merge duplicate ingredients, keep quantities realistic, and use common grocery units.`

// ShoppingListService derives shopping lists from meal plans by
// deterministic aggregation, falling back to the agent for free-form
// requests.
type ShoppingListService struct {
	orchestrator *agent.Orchestrator
	recipes      *RecipeService
	mealPlans    *MealPlanService
	now          func() time.Time
}

// NewShoppingListService creates a new ShoppingListService instance
func NewShoppingListService(orchestrator *agent.Orchestrator, recipes *RecipeService, mealPlans *MealPlanService) *ShoppingListService {
	return &ShoppingListService{
		orchestrator: orchestrator,
		recipes:      recipes,
		mealPlans:    mealPlans,
		now:          time.Now,
	}
}

// ForMealPlan aggregates the ingredients of every recipe linked into the
// plan. Skeleton slots without a generated recipe are skipped. The
// aggregation is deterministic: no model call is involved.
func (s *ShoppingListService) ForMealPlan(ctx context.Context, planID uuid.UUID) (*model.ShoppingList, error) {
	plan, err := s.mealPlans.GetMealPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	recipes := make(map[string]*model.Recipe)
	for _, sk := range plan.Recipes {
		if sk.RecipeID == "" {
			continue
		}
		recipeID, err := uuid.Parse(sk.RecipeID)
		if err != nil {
			continue
		}
		recipe, err := s.recipes.GetRecipe(ctx, recipeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load recipe %s: %w", sk.RecipeID, err)
		}
		recipes[sk.RecipeID] = recipe
	}

	items := AggregateShoppingItems(plan.Recipes, recipes)
	return assembleShoppingList(plan.ID, items, s.now()), nil
}

// Generate handles a free-form shopping list request through the agent.
func (s *ShoppingListService) Generate(ctx context.Context, req model.GenerationRequest) (*model.ShoppingList, error) {
	compiled := prompt.Compile(req)

	result, err := s.orchestrator.Generate(ctx, shoppingSystemPrompt, compiled, nil, ShoppingListSchema)
	if err != nil {
		return nil, err
	}

	draft, ok := result.Object.(*ShoppingListDraft)
	if !ok {
		return nil, fmt.Errorf("unexpected draft type %T", result.Object)
	}

	return assembleShoppingList(uuid.Nil, draft.Items, s.now()), nil
}

// AggregateShoppingItems merges the ingredient lines of the plan's
// linked recipes. Lines naming the same ingredient in the same unit are
// summed; each item records which recipes need it. Output order is
// stable: by ingredient name, then unit.
func AggregateShoppingItems(skeletons []model.RecipeSkeleton, recipes map[string]*model.Recipe) []model.ShoppingItem {
	type bucket struct {
		item model.ShoppingItem
		seen map[string]bool
	}
	buckets := make(map[string]*bucket)

	for _, sk := range skeletons {
		recipe, ok := recipes[sk.RecipeID]
		if !ok {
			continue
		}
		for _, ing := range recipe.Ingredients {
			key := aggregationKey(ing.Name, ing.Unit)
			b, found := buckets[key]
			if !found {
				b = &bucket{
					item: model.ShoppingItem{
						IngredientName: ing.Name,
						Unit:           ing.Unit,
					},
					seen: make(map[string]bool),
				}
				buckets[key] = b
			}
			b.item.TotalQuantity += ing.Quantity
			if !b.seen[sk.RecipeID] {
				b.seen[sk.RecipeID] = true
				b.item.NeededForRecipes = append(b.item.NeededForRecipes, sk.RecipeID)
			}
		}
	}

	items := make([]model.ShoppingItem, 0, len(buckets))
	for _, b := range buckets {
		items = append(items, b.item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].IngredientName != items[j].IngredientName {
			return items[i].IngredientName < items[j].IngredientName
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// aggregationKey merges ingredient lines that name the same thing in the
// same unit, ignoring case and surrounding whitespace.
func aggregationKey(name, unit string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(unit))
}
