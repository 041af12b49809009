package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkline/forkline/backend/internal/middleware"
	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/types"
)

// ShoppingListHandler serves free-form shopping list generation. Lists
// for a meal plan live under the meal plan routes.
type ShoppingListHandler struct {
	shopping ShoppingListServiceInterface
	auth     AuthServiceInterface
}

func NewShoppingListHandler(shopping ShoppingListServiceInterface, auth AuthServiceInterface) *ShoppingListHandler {
	return &ShoppingListHandler{
		shopping: shopping,
		auth:     auth,
	}
}

func (h *ShoppingListHandler) RegisterRoutes(router *gin.RouterGroup) {
	lists := router.Group("/shopping-lists")
	lists.Use(middleware.AuthMiddleware(h.auth))
	{
		lists.POST("/generate", h.Generate)
	}
}

func (h *ShoppingListHandler) Generate(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req types.GenerateShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	list, err := h.shopping.Generate(c.Request.Context(), model.GenerationRequest{
		Kind:                 model.RequestShoppingList,
		Description:          req.Description,
		AvailableIngredients: req.AvailableIngredients,
	})
	if err != nil {
		respondGenerationError(c, "ShoppingListHandler", err)
		return
	}

	c.JSON(http.StatusOK, list)
}
