package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/forkline/forkline/backend/internal/api"
	"github.com/forkline/forkline/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	db *gorm.DB,
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	mealPlanHandler *api.MealPlanHandler,
	shoppingHandler *api.ShoppingListHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	router.GET("/health", api.HealthCheck(db))

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	mealPlanHandler.RegisterRoutes(v1)
	shoppingHandler.RegisterRoutes(v1)

	return router
}
