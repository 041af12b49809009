package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forkline/forkline/backend/internal/middleware"
	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/types"
)

// RecipeHandler serves the recipe catalog and the generation endpoints.
type RecipeHandler struct {
	recipes     RecipeServiceInterface
	auth        AuthServiceInterface
	rateLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipes RecipeServiceInterface, auth AuthServiceInterface, rateLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		auth:        auth,
		rateLimiter: rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	recipes.Use(middleware.AuthMiddleware(h.auth))
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)

		generate := recipes.Group("")
		if h.rateLimiter != nil {
			generate.Use(h.rateLimiter.RateLimitMiddleware())
		}
		generate.POST("/generate", h.GenerateRecipe)
		generate.POST("/:id/regenerate", h.RegenerateRecipe)
		generate.POST("/:id/modify", h.ModifyRecipe)
	}
}

func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.GenerateRecipe(c.Request.Context(), model.GenerationRequest{
		Kind:                 model.RequestRecipeGeneration,
		Description:          req.Description,
		Complexity:           req.Complexity,
		TargetMacros:         req.TargetMacros,
		AvailableIngredients: req.AvailableIngredients,
	}, userID)
	if err != nil {
		respondGenerationError(c, "RecipeHandler", err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) RegenerateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.RegenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.RegenerateRecipe(c.Request.Context(), id, req.Reason, userID)
	if err != nil {
		respondGenerationError(c, "RecipeHandler", err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) ModifyRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.ModifyRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	recipe, err := h.recipes.ModifyRecipe(c.Request.Context(), id, req.Instructions, userID)
	if err != nil {
		respondGenerationError(c, "RecipeHandler", err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondGenerationError(c, "RecipeHandler", err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if q := c.Query("q"); q != "" {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		matches, err := h.recipes.SearchSimilar(c.Request.Context(), q, limit)
		if err != nil {
			respondGenerationError(c, "RecipeHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipes": matches})
		return
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), &userID)
	if err != nil {
		respondGenerationError(c, "RecipeHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondGenerationError(c, "RecipeHandler", err)
		return
	}

	c.Status(http.StatusNoContent)
}
