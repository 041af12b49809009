package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkline/forkline/backend/internal/middleware"
	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/types"
)

// MealPlanHandler serves weekly meal plan generation and the shopping
// lists derived from plans.
type MealPlanHandler struct {
	mealPlans   MealPlanServiceInterface
	shopping    ShoppingListServiceInterface
	auth        AuthServiceInterface
	rateLimiter *middleware.RateLimiter
}

func NewMealPlanHandler(mealPlans MealPlanServiceInterface, shopping ShoppingListServiceInterface, auth AuthServiceInterface, rateLimiter *middleware.RateLimiter) *MealPlanHandler {
	return &MealPlanHandler{
		mealPlans:   mealPlans,
		shopping:    shopping,
		auth:        auth,
		rateLimiter: rateLimiter,
	}
}

func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/meal-plans")
	plans.Use(middleware.AuthMiddleware(h.auth))
	{
		plans.GET("", h.ListMealPlans)
		plans.GET("/:id", h.GetMealPlan)
		plans.GET("/:id/shopping-list", h.ShoppingList)

		generate := plans.Group("")
		if h.rateLimiter != nil {
			generate.Use(h.rateLimiter.RateLimitMiddleware())
		}
		generate.POST("/generate", h.GenerateMealPlan)
		generate.POST("/:id/slots/:skeleton_id/fill", h.FillSlot)
	}
}

func (h *MealPlanHandler) GenerateMealPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req types.GenerateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.mealPlans.GenerateMealPlan(c.Request.Context(), model.GenerationRequest{
		Kind:         model.RequestWeeklyMealPlan,
		Description:  req.Description,
		TargetMacros: req.TargetMacros,
	}, userID)
	if err != nil {
		respondGenerationError(c, "MealPlanHandler", err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *MealPlanHandler) GetMealPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	plan, err := h.mealPlans.GetMealPlan(c.Request.Context(), id)
	if err != nil {
		respondGenerationError(c, "MealPlanHandler", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) ListMealPlans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plans, err := h.mealPlans.ListMealPlans(c.Request.Context(), userID)
	if err != nil {
		respondGenerationError(c, "MealPlanHandler", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal_plans": plans})
}

func (h *MealPlanHandler) FillSlot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	skeletonID := c.Param("skeleton_id")
	if skeletonID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skeleton_id"})
		return
	}

	recipe, err := h.mealPlans.FillSlot(c.Request.Context(), id, skeletonID, userID)
	if err != nil {
		respondGenerationError(c, "MealPlanHandler", err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *MealPlanHandler) ShoppingList(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.shopping.ForMealPlan(c.Request.Context(), id)
	if err != nil {
		respondGenerationError(c, "MealPlanHandler", err)
		return
	}

	c.JSON(http.StatusOK, list)
}
