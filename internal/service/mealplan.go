package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/prompt"
)

// mealPlanSystemPrompt frames weekly meal plan generation. Plans are
// skeletons only; concrete recipes are generated separately per slot.
const mealPlanSystemPrompt = `You are a professional nutritionist planning a week of meals. Produce a set of recipe skeletons that covers the requested days and people, balancing calories and macros across the week. Use the provided tools to calculate each person's daily caloric needs and to distribute calories across macros. Each skeleton needs a descriptive title, per-serving calorie target, macro percentages that sum to 100, and scheduled dates. Do not write full recipes.`

// MealPlanService generates and stores weekly meal plans and links
// generated recipes into their skeleton slots.
type MealPlanService struct {
	db           *gorm.DB
	orchestrator *agent.Orchestrator
	recipes      *RecipeService
	toolkit      *agent.Toolkit
}

// NewMealPlanService creates a new MealPlanService instance
func NewMealPlanService(db *gorm.DB, orchestrator *agent.Orchestrator, recipes *RecipeService) *MealPlanService {
	return &MealPlanService{
		db:           db,
		orchestrator: orchestrator,
		recipes:      recipes,
		toolkit:      NewNutritionistToolkit(),
	}
}

// GenerateMealPlan runs the pipeline for a weekly_meal_plan request and
// persists the resulting plan for the user.
func (s *MealPlanService) GenerateMealPlan(ctx context.Context, req model.GenerationRequest, userID uuid.UUID) (*model.MealPlan, error) {
	compiled := prompt.Compile(req)

	result, err := s.orchestrator.Generate(ctx, mealPlanSystemPrompt, compiled, s.toolkit, MealPlanSchema)
	if err != nil {
		return nil, err
	}

	draft, ok := result.Object.(*MealPlanDraft)
	if !ok {
		return nil, fmt.Errorf("unexpected draft type %T", result.Object)
	}
	if len(draft.Recipes) == 0 {
		return nil, fmt.Errorf("generated meal plan has no recipes")
	}

	plan := assembleMealPlan(draft, userID)
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}
	return plan, nil
}

// GetMealPlan retrieves a meal plan by ID
func (s *MealPlanService) GetMealPlan(ctx context.Context, id uuid.UUID) (*model.MealPlan, error) {
	var plan model.MealPlan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListMealPlans lists meal plans for a user.
func (s *MealPlanService) ListMealPlans(ctx context.Context, userID uuid.UUID) ([]*model.MealPlan, error) {
	var plans []model.MealPlan
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&plans).Error; err != nil {
		return nil, err
	}
	result := make([]*model.MealPlan, len(plans))
	for i := range plans {
		result[i] = &plans[i]
	}
	return result, nil
}

// slotRequest builds the recipe generation request for one skeleton. The
// calorie target is omitted when the skeleton carries none, so the agent
// is not steered toward a zero-calorie recipe.
func slotRequest(sk model.RecipeSkeleton) model.GenerationRequest {
	req := model.GenerationRequest{
		Kind: model.RequestRecipeGeneration,
		Description: fmt.Sprintf("%s (%s, %d servings, aim for %d%% protein / %d%% carbs / %d%% fat)",
			sk.Title, sk.MealType, sk.Servings,
			int(sk.MacroPercentages.ProteinPercent),
			int(sk.MacroPercentages.CarbPercent),
			int(sk.MacroPercentages.FatPercent)),
	}
	if totalCalories := sk.TargetCaloriesPerServing * sk.Servings; totalCalories > 0 {
		req.TargetMacros = &model.NutritionProfile{Calories: &totalCalories}
	}
	return req
}

// FillSlot generates a concrete recipe for one skeleton in the plan and
// links it by recipe ID. The skeleton's targets become the request.
func (s *MealPlanService) FillSlot(ctx context.Context, planID uuid.UUID, skeletonID string, userID uuid.UUID) (*model.Recipe, error) {
	plan, err := s.GetMealPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, sk := range plan.Recipes {
		if sk.SkeletonID == skeletonID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("meal plan has no skeleton %q", skeletonID)
	}

	recipe, err := s.recipes.GenerateRecipe(ctx, slotRequest(plan.Recipes[idx]), userID)
	if err != nil {
		return nil, err
	}

	plan.Recipes[idx].RecipeID = recipe.ID.String()
	if err := s.db.WithContext(ctx).Model(&model.MealPlan{}).Where("id = ?", plan.ID).
		Update("recipes", plan.Recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to link recipe into meal plan: %w", err)
	}
	return recipe, nil
}
