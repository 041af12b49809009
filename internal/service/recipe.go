package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/nutrition"
	"github.com/forkline/forkline/backend/internal/prompt"
)

// recipeSystemPrompt frames every recipe generation. The orchestrator
// appends the target schema description to it.
const recipeSystemPrompt = `You are a professional chef and nutritionist. Create complete, practical recipes with clear ingredient quantities and step-by-step instructions. Use the available tools to look up existing recipes for inspiration and nutrition data for ingredients, but never copy a catalog recipe verbatim.`

// RecipeService owns the recipe catalog and the generation pipeline that
// fills it: prompt compilation, agent orchestration, image enrichment
// and persistence.
type RecipeService struct {
	db           *gorm.DB
	orchestrator *agent.Orchestrator
	images       *ImageService
	toolkit      *agent.Toolkit
}

// NewRecipeService creates a new RecipeService instance. images may be
// nil, in which case generated recipes simply carry no image. foods may
// be nil to disable the nutrition lookup tool.
func NewRecipeService(db *gorm.DB, orchestrator *agent.Orchestrator, images *ImageService, foods nutrition.Client) *RecipeService {
	s := &RecipeService{
		db:           db,
		orchestrator: orchestrator,
		images:       images,
	}
	s.toolkit = NewRecipeToolkit(s, foods)
	return s
}

// GenerateRecipe runs the full pipeline for a recipe_generation request:
// compile the prompt, drive the agent to a schema-valid draft, enrich
// with an image, assemble and persist.
func (s *RecipeService) GenerateRecipe(ctx context.Context, req model.GenerationRequest, userID uuid.UUID) (*model.Recipe, error) {
	draft, err := s.generateDraft(ctx, req)
	if err != nil {
		return nil, err
	}

	imageURL := s.enrichWithImage(ctx, draft)

	recipe := assembleRecipe(draft, userID, imageURL)
	if !recipe.IsComplete() {
		return nil, fmt.Errorf("generated recipe %q is incomplete", recipe.Title)
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return recipe, nil
}

// RegenerateRecipe replaces a stored recipe with a freshly generated one
// for the same dish, keeping the original's identity.
func (s *RecipeService) RegenerateRecipe(ctx context.Context, id uuid.UUID, reason string, userID uuid.UUID) (*model.Recipe, error) {
	original, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	req := model.GenerationRequest{
		Kind:               model.RequestRecipeRegeneration,
		Description:        describeRecipe(original),
		RegenerationReason: reason,
	}

	draft, err := s.generateDraft(ctx, req)
	if err != nil {
		return nil, err
	}

	imageURL := s.enrichWithImage(ctx, draft)
	return s.replaceRecipe(ctx, original, draft, imageURL)
}

// ModifyRecipe regenerates a stored recipe with the requested changes
// applied, keeping the original's identity.
func (s *RecipeService) ModifyRecipe(ctx context.Context, id uuid.UUID, instructions string, userID uuid.UUID) (*model.Recipe, error) {
	original, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	req := model.GenerationRequest{
		Kind:                     model.RequestRecipeModification,
		Description:              describeRecipe(original),
		ModificationInstructions: instructions,
	}

	draft, err := s.generateDraft(ctx, req)
	if err != nil {
		return nil, err
	}

	imageURL := s.enrichWithImage(ctx, draft)
	return s.replaceRecipe(ctx, original, draft, imageURL)
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes lists recipes for a user, or all recipes if userID is nil.
func (s *RecipeService) ListRecipes(ctx context.Context, userID *uuid.UUID) ([]*model.Recipe, error) {
	var recipes []model.Recipe
	query := s.db.WithContext(ctx)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	result := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

// DeleteRecipe deletes a recipe
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id).Error
}

// SearchSimilar finds catalog recipes close to a free-text query,
// combining embedding distance with keyword matching.
func (s *RecipeService) SearchSimilar(ctx context.Context, query string, limit int) ([]*model.Recipe, error) {
	if limit <= 0 {
		limit = 5
	}

	var recipes []model.Recipe
	dbQuery := s.db.WithContext(ctx)

	if query != "" {
		vec := GenerateEmbedding(query)
		like := "%" + strings.ToLower(query) + "%"

		subQuery := s.db.Model(&model.Recipe{}).
			Select("id, embedding <-> ? as similarity", vec).
			Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients::text) LIKE ?",
				like, like, like)

		dbQuery = dbQuery.Joins("JOIN (?) as search ON recipes.id = search.id", subQuery).
			Order("search.similarity ASC")
	}

	if err := dbQuery.Limit(limit).Find(&recipes).Error; err != nil {
		return nil, err
	}
	result := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

// generateDraft compiles the request and drives the agent until it
// produces a schema-valid recipe draft.
func (s *RecipeService) generateDraft(ctx context.Context, req model.GenerationRequest) (*RecipeDraft, error) {
	compiled := prompt.Compile(req)

	result, err := s.orchestrator.Generate(ctx, recipeSystemPrompt, compiled, s.toolkit, RecipeSchema)
	if err != nil {
		return nil, err
	}

	draft, ok := result.Object.(*RecipeDraft)
	if !ok {
		return nil, fmt.Errorf("unexpected draft type %T", result.Object)
	}
	return draft, nil
}

// enrichWithImage attempts image generation for the draft. Enrichment is
// strictly optional: any failure is logged and an empty URL returned.
func (s *RecipeService) enrichWithImage(ctx context.Context, draft *RecipeDraft) string {
	if s.images == nil {
		return ""
	}
	imageURL, err := s.images.GenerateRecipeImage(ctx, draft.Title, draft.Description)
	if err != nil {
		log.Printf("[RecipeService] Image enrichment failed for %q: %v", draft.Title, err)
		return ""
	}
	return imageURL
}

// replaceRecipe overwrites a stored recipe's content with a new draft
// while preserving its ID and owner.
func (s *RecipeService) replaceRecipe(ctx context.Context, original *model.Recipe, draft *RecipeDraft, imageURL string) (*model.Recipe, error) {
	updated := assembleRecipe(draft, original.UserID, imageURL)
	updated.ID = original.ID
	updated.CreatedAt = original.CreatedAt
	if imageURL == "" {
		updated.ImageURL = original.ImageURL
	}

	if !updated.IsComplete() {
		return nil, fmt.Errorf("generated recipe %q is incomplete", updated.Title)
	}

	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", original.ID).Updates(map[string]interface{}{
		"title":             updated.Title,
		"description":       updated.Description,
		"ingredients":       updated.Ingredients,
		"instructions":      updated.Instructions,
		"prep_time_minutes": updated.PrepTimeMinutes,
		"cook_time_minutes": updated.CookTimeMinutes,
		"nutrition":         updated.Nutrition,
		"nutrition_basis":   updated.NutritionBasis,
		"servings":          updated.Servings,
		"serving_size":      updated.ServingSize,
		"citations":         updated.Citations,
		"image_url":         updated.ImageURL,
		"embedding":         updated.Embedding,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return s.GetRecipe(ctx, original.ID)
}

// describeRecipe renders a stored recipe back into request text so the
// agent has the full picture when regenerating or modifying it.
func describeRecipe(r *model.Recipe) string {
	var b strings.Builder
	b.WriteString(r.Title)
	if r.Description != "" {
		b.WriteString(" - ")
		b.WriteString(r.Description)
	}
	if len(r.Ingredients) > 0 {
		names := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			names = append(names, ing.Name)
		}
		b.WriteString(". Ingredients: ")
		b.WriteString(strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, ". Serves %d.", r.Servings)
	return b.String()
}
