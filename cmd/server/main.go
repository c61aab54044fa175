package main

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/internhub/intern-management-api/internal/config"
	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/database"
	"github.com/internhub/intern-management-api/internal/handlers"
	"github.com/internhub/intern-management-api/internal/logging"
	"github.com/internhub/intern-management-api/internal/middleware"
	"github.com/internhub/intern-management-api/internal/repository"
	"github.com/internhub/intern-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logging.Init(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		JSON:    cfg.GinMode == gin.ReleaseMode,
		Service: "intern-management-api",
	})
	log := logging.Logger

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	internRepo := repository.NewInternRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(userRepo, tokenService)
	internService := services.NewInternService(internRepo, userRepo, taskRepo)

	var drafter services.TaskDrafter
	if aiService := services.NewAIService(cfg.OpenAIAPIKey); aiService != nil {
		drafter = aiService
	} else {
		log.Warn("OPENAI_API_KEY not set, task drafting disabled")
	}
	taskService := services.NewTaskService(taskRepo, internRepo, drafter)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	internHandler := handlers.NewInternHandler(internService)
	taskHandler := handlers.NewTaskHandler(taskService)

	requireAuth := middleware.RequireAuth(authService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Intern Management API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register/", authHandler.Register)
			auth.POST("/login/", authHandler.Login)
			auth.POST("/refresh/", authHandler.Refresh)
			auth.POST("/logout/", authHandler.Logout)
			auth.GET("/me/", requireAuth, authHandler.GetCurrentUser)
		}

		// Intern routes (protected)
		interns := api.Group("/interns")
		interns.Use(requireAuth)
		{
			interns.GET("/", internHandler.ListInterns)
			interns.POST("/", internHandler.CreateIntern)
			interns.GET("/with-progress/", internHandler.ListInternsWithProgress)
			interns.GET("/:id/", internHandler.GetIntern)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("/", taskHandler.ListTasks)
			tasks.POST("/", taskHandler.CreateTask)
			tasks.POST("/generate/", taskHandler.GenerateTasks)
			tasks.GET("/:id/", taskHandler.GetTask)
			tasks.PATCH("/:id/", taskHandler.UpdateTask)
			tasks.PUT("/:id/", taskHandler.UpdateTask)
			tasks.DELETE("/:id/", taskHandler.DeleteTask)
			tasks.POST("/:id/interact/", taskHandler.InteractTask)
		}
	}

	// Start server
	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("Server starting")
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
