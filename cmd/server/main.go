package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-hub-api/internal/config"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/handlers"
	"github.com/yukikurage/project-hub-api/internal/mailer"
	"github.com/yukikurage/project-hub-api/internal/realtime"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/services"
	"github.com/yukikurage/project-hub-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

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
	if err := database.SeedAdmin(database.GetDB(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// Object storage
	var store storage.ObjectStore
	if cfg.Storage.Bucket != "" {
		gcsStore, err := storage.NewGCSStore(context.Background(), cfg.Storage.Bucket, cfg.Storage.CredentialsFile, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatalf("Failed to create object store: %v", err)
		}
		defer gcsStore.Close()
		store = gcsStore
	} else {
		log.Println("GCS_BUCKET not set, keeping uploads in memory")
		store = storage.NewMemoryStore("http://localhost:" + cfg.ServerPort + "/uploads")
	}

	// Initialize Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	sessionStore, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(constants.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	// Initialize services
	repos := repository.New(database.GetDB())
	hub := realtime.NewHub()
	notifier := services.NewNotificationService(repos, hub, mailer.New(cfg.Email))
	tokens := services.NewTokenIssuer(cfg.JWTSecret, constants.TokenTTL)
	aiService := services.NewAIService(cfg.OpenAIAPIKey)

	authService := services.NewAuthService(repos, tokens, store, notifier)

	// Initialize handlers
	h := &handlers.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Team:          handlers.NewTeamHandler(services.NewTeamService(repos)),
		Project:       handlers.NewProjectHandler(services.NewProjectService(repos, store, notifier)),
		Task:          handlers.NewTaskHandler(services.NewTaskService(repos, store, notifier, aiService)),
		Calendar:      handlers.NewCalendarHandler(services.NewCalendarService(repos, notifier)),
		Holiday:       handlers.NewHolidayHandler(services.NewHolidayService(repos, notifier)),
		Marketing:     handlers.NewMarketingHandler(services.NewMarketingService(repos, store, notifier)),
		TaskUpdate:    handlers.NewTaskUpdateHandler(services.NewTaskUpdateService(repos, store, notifier)),
		Revenue:       handlers.NewRevenueHandler(services.NewRevenueService(repos, store, notifier)),
		Message:       handlers.NewMessageHandler(services.NewMessageService(repos, notifier)),
		Notification:  handlers.NewNotificationHandler(notifier, hub),
		TokenResolver: authService,
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Hub API is running",
		})
	})

	h.RegisterRoutes(r)

	// Start server
	log.Printf("Server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
