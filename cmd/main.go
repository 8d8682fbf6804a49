package main

import (
	"fmt"
	"os"
	"time"

	"github.com/eatsential/eatsential-backend/internal/clients/openai"
	"github.com/eatsential/eatsential-backend/internal/clients/places"
	"github.com/eatsential/eatsential-backend/internal/clients/redis"
	"github.com/eatsential/eatsential-backend/internal/db"
	"github.com/eatsential/eatsential-backend/internal/handlers"
	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/middleware"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/server"
	"github.com/eatsential/eatsential-backend/internal/services"
	"github.com/eatsential/eatsential-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	maxResults := utils.GetEnvAsInt("RECOMMEND_MAX_RESULTS", 5, log)
	searchMaxResults := utils.GetEnvAsInt("PLACES_SEARCH_MAX_RESULTS", 20, log)
	searchDelayMs := utils.GetEnvAsInt("PLACES_SEARCH_DELAY_MS", 200, log)
	cacheTTL := utils.GetEnvAsInt("PLACES_CACHE_TTL_SECONDS", 300, log)
	llmTemperature := utils.GetEnvAsFloat("OPENAI_TEMPERATURE", 0.2, log)
	port := utils.GetEnv("PORT", "8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	restaurantRepo := repos.NewRestaurantRepo(thePG, log)
	menuItemRepo := repos.NewMenuItemRepo(thePG, log)
	feedbackRepo := repos.NewFeedbackRepo(thePG, log)

	// Clients
	log.Info("Setting up clients from main...")
	redisClient, err := redis.New(log)
	if err != nil {
		log.Warn("Redis unavailable, place search results will not be cached", "error", err)
		redisClient = nil
	}

	var placesClient places.Client
	placesClient, err = places.NewClient(log)
	if err != nil {
		log.Warn("Place search not configured, using local catalog only", "error", err)
		placesClient = nil
	} else if redisClient != nil {
		placesClient = places.NewCachedClient(log, placesClient, redisClient, time.Duration(cacheTTL)*time.Second)
	}

	// A missing key or the test sentinel puts the LLM ranker in mock mode.
	var aiClient openai.Client
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && key != openai.MockAPIKey {
		aiClient, err = openai.NewClient(log)
		if err != nil {
			log.Warn("OpenAI client init failed, LLM ranking runs in mock mode", "error", err)
			aiClient = nil
		}
	} else {
		log.Info("No OpenAI key configured, LLM ranking runs in mock mode")
	}

	// Services
	log.Info("Setting up Services from main...")
	rules := services.DefaultRules()
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(tokenTTL)*time.Second)
	feedbackService := services.NewFeedbackService(thePG, log, feedbackRepo)
	restaurantService := services.NewRestaurantService(restaurantRepo, rules, log)
	safetyFilter := services.NewSafetyFilter(rules)
	baselineRanker := services.NewBaselineRanker(rules)
	llmRanker := services.NewLLMRanker(log, aiClient, llmTemperature)
	recommendationService := services.NewRecommendationService(
		log,
		userRepo,
		restaurantRepo,
		menuItemRepo,
		feedbackService,
		restaurantService,
		placesClient,
		safetyFilter,
		baselineRanker,
		llmRanker,
		rules,
		services.RecommendationOptions{
			MaxResults:       maxResults,
			SearchMaxResults: searchMaxResults,
			SearchDelay:      time.Duration(searchDelayMs) * time.Millisecond,
		},
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService, feedbackService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:           authHandler,
		AuthMiddleware:        authMiddleware,
		RecommendationHandler: recommendationHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
