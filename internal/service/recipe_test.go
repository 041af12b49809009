package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkline/forkline/backend/config"
	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/model"
)

// newScriptedChat serves canned assistant replies, one per request.
func newScriptedChat(t *testing.T, contents ...string) *httptest.Server {
	t.Helper()
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if call >= len(contents) {
			t.Errorf("unexpected chat call %d", call)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		reply := map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message":       map[string]interface{}{"role": "assistant", "content": contents[call]},
					"finish_reason": "stop",
				},
			},
		}
		call++
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(reply); err != nil {
			t.Errorf("failed to encode reply: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func validDraftJSON() string {
	draft := RecipeDraft{
		Title:       "Lentil Soup",
		Description: "Hearty red lentil soup",
		Ingredients: []model.Ingredient{
			{Name: "red lentils", Quantity: 2, Unit: "cups"},
			{Name: "onion", Quantity: 1},
		},
		Instructions: []model.InstructionSection{
			{SectionName: "Cooking", Steps: []string{"Simmer everything for 30 minutes."}},
		},
		Servings: 4,
	}
	out, _ := json.Marshal(draft)
	return string(out)
}

func TestGenerateDraft(t *testing.T) {
	t.Run("returns schema-valid draft", func(t *testing.T) {
		chat := newScriptedChat(t, validDraftJSON())
		svc := NewRecipeService(nil, agent.NewOrchestratorForEndpoint(chat.URL, "test-key"), nil, nil)

		draft, err := svc.generateDraft(context.Background(), model.GenerationRequest{
			Kind:        model.RequestRecipeGeneration,
			Description: "a lentil soup",
		})
		require.NoError(t, err)
		assert.Equal(t, "Lentil Soup", draft.Title)
		assert.Len(t, draft.Ingredients, 2)
		assert.Equal(t, 4, draft.Servings)
	})

	t.Run("schema violation surfaces as SchemaError", func(t *testing.T) {
		chat := newScriptedChat(t, `{"title": "Nameless"}`)
		svc := NewRecipeService(nil, agent.NewOrchestratorForEndpoint(chat.URL, "test-key"), nil, nil)

		_, err := svc.generateDraft(context.Background(), model.GenerationRequest{
			Kind:        model.RequestRecipeGeneration,
			Description: "anything",
		})
		var schemaErr *agent.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "Recipe", schemaErr.Schema)
	})
}

func TestEnrichWithImage(t *testing.T) {
	draft := &RecipeDraft{Title: "Lentil Soup", Description: "Hearty"}

	t.Run("image failure yields empty URL", func(t *testing.T) {
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer broken.Close()

		svc := &RecipeService{
			images: NewImageServiceForEndpoint(broken.URL, "test-key", &config.S3Config{BucketName: "test-bucket"}),
		}
		assert.Equal(t, "", svc.enrichWithImage(context.Background(), draft))
	})

	t.Run("no image service yields empty URL", func(t *testing.T) {
		svc := &RecipeService{}
		assert.Equal(t, "", svc.enrichWithImage(context.Background(), draft))
	})
}

func TestAssembleRecipe(t *testing.T) {
	userID := uuid.New()
	draft := &RecipeDraft{
		Title:       "Lentil Soup",
		Description: "Hearty red lentil soup",
		Ingredients: []model.Ingredient{{Name: "red lentils", Quantity: 2, Unit: "cups"}},
		Instructions: []model.InstructionSection{
			{SectionName: "Cooking", Steps: []string{"Simmer."}},
		},
		Servings: 4,
	}

	recipe := assembleRecipe(draft, userID, "https://img.example/soup.png")

	assert.NotEqual(t, uuid.Nil, recipe.ID)
	assert.Equal(t, userID, recipe.UserID)
	assert.Equal(t, model.NutritionBasisTotal, recipe.NutritionBasis)
	assert.Equal(t, "https://img.example/soup.png", recipe.ImageURL)
	assert.True(t, recipe.IsComplete())

	// A recipe without an image is still complete.
	plain := assembleRecipe(draft, userID, "")
	assert.True(t, plain.IsComplete())

	empty := assembleRecipe(&RecipeDraft{Title: "Empty"}, userID, "")
	assert.False(t, empty.IsComplete())
}

func TestDescribeRecipe(t *testing.T) {
	recipe := &model.Recipe{
		Title:       "Lentil Soup",
		Description: "Hearty",
		Ingredients: model.IngredientList{
			{Name: "red lentils"},
			{Name: "onion"},
		},
		Servings: 4,
	}

	got := describeRecipe(recipe)
	assert.Equal(t, "Lentil Soup - Hearty. Ingredients: red lentils, onion. Serves 4.", got)
}

func TestGenerateRecipePersistence(t *testing.T) {
	// Full pipeline against a real database.
	chat := newScriptedChat(t, validDraftJSON())

	db := setupServiceDB(t)
	svc := NewRecipeService(db, agent.NewOrchestratorForEndpoint(chat.URL, "test-key"), nil, nil)

	userID := seedUser(t, db)
	recipe, err := svc.GenerateRecipe(context.Background(), model.GenerationRequest{
		Kind:        model.RequestRecipeGeneration,
		Description: "a lentil soup",
	}, userID)
	require.NoError(t, err)

	stored, err := svc.GetRecipe(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lentil Soup", stored.Title)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, 4, stored.Servings)
}
