package main

import (
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mmonco/mpute/internal/handlers"
	"github.com/mmonco/mpute/internal/middleware"
	"github.com/mmonco/mpute/internal/repositories"
	"github.com/mmonco/mpute/internal/services"
	"github.com/mmonco/mpute/internal/workers"
	"github.com/mmonco/mpute/pkg/config"
	"github.com/mmonco/mpute/pkg/database"
	"github.com/mmonco/mpute/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	if err := database.Init(); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(database.DB)
	userService := services.NewUserService(userRepo)
	projectRepo := repositories.NewProjectRepository(database.DB)
	verifierService := services.NewVerifierService(
		config.AppConfig.Verifier.URL,
		time.Duration(config.AppConfig.Verifier.Timeout)*time.Second,
	)
	projectService := services.NewProjectService(projectRepo, verifierService)

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(projectRepo, verifierService)

	// Initialize router
	router := gin.Default()

	// Apply middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.AppConfig.Server.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SessionMiddleware())

	// Setup routes
	setupRoutes(router, userService, projectService)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	logger.Info("Server stopped")
}

func setupRoutes(router *gin.Engine, userService *services.UserService, projectService *services.ProjectService) {
	// Initialize handlers
	homeHandler := handlers.NewHomeHandler()
	authHandler := handlers.NewAuthHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	healthHandler := handlers.NewHealthHandler()

	// Home page
	router.GET("/", homeHandler.Index)

	// Auth routes
	router.GET("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.GET("/auth/github/callback", authHandler.GitHubCallback)

	// Protected routes
	projects := router.Group("/projects")
	projects.Use(middleware.AuthRequired())
	{
		projects.POST("", projectHandler.MutateProject)
		projects.GET("/all", projectHandler.ListAllProjects)
		projects.GET("/mine", projectHandler.ListMyProjects)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
