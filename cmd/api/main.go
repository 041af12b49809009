package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/forkline/forkline/backend/config"
	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/api"
	"github.com/forkline/forkline/backend/internal/database"
	"github.com/forkline/forkline/backend/internal/middleware"
	"github.com/forkline/forkline/backend/internal/nutrition"
	"github.com/forkline/forkline/backend/internal/router"
	"github.com/forkline/forkline/backend/internal/secrets"
	"github.com/forkline/forkline/backend/internal/server"
	"github.com/forkline/forkline/backend/internal/service"
)

func main() {
	// Local development reads a .env file; deployed environments set
	// real variables and this is a no-op.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	orchestrator, err := agent.NewOrchestrator()
	if err != nil {
		log.Fatalf("Failed to initialize orchestrator: %v", err)
	}

	// Image enrichment is optional: without credentials recipes simply
	// ship without pictures.
	var images *service.ImageService
	if s3Config, err := config.NewS3Config(ctx, cfg); err != nil {
		log.Printf("S3 unavailable, recipe images disabled: %v", err)
	} else {
		if err := s3Config.SetupBucketPolicy(ctx); err != nil {
			log.Printf("Failed to apply bucket policy, images may not be publicly readable: %v", err)
		}
		if images, err = service.NewImageService(s3Config); err != nil {
			log.Printf("Image generation unavailable: %v", err)
			images = nil
		}
	}

	// Without a secret store the FatSecret client cannot authenticate, so
	// fall back to the credential-free Open Food Facts provider.
	var foods nutrition.Client
	providerName := "fatsecret"
	if store, err := secrets.NewManagerStore(ctx, cfg.AWSRegion); err != nil {
		log.Printf("Secret store unavailable, using Open Food Facts: %v", err)
		foods = nutrition.NewOpenFoodFactsClient(cfg.OpenFoodFactsAPIURL)
		providerName = "openfoodfacts"
	} else {
		credentials := secrets.NewCredentialCache(store)
		foods = nutrition.NewFatSecretClient(credentials, cfg.FatSecretAPIURL, cfg.FatSecretTokenURL)
	}

	var rateLimiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, rate limiting disabled: %v", err)
	} else {
		rateLimiter = middleware.NewGenerationRateLimiter(redisClient)
		foods = nutrition.NewCachedClient(foods, redisClient, providerName)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, orchestrator, images, foods)
	mealPlanService := service.NewMealPlanService(db, orchestrator, recipeService)
	shoppingService := service.NewShoppingListService(orchestrator, recipeService, mealPlanService)

	engine := router.SetupRouter(
		db,
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, authService, rateLimiter),
		api.NewMealPlanHandler(mealPlanService, shoppingService, authService, rateLimiter),
		api.NewShoppingListHandler(shoppingService, authService),
	)

	srv := server.NewServer(engine)
	if err := srv.Start(cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
