package main

import (
	"log"
	"time"

	"caboai_go_service/cmd/api/config"
	"caboai_go_service/internal/api"
	"caboai_go_service/internal/database"
	"caboai_go_service/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set in the environment")
	}

	// Optional Postgres archive; the service runs purely in-memory
	// without it.
	var archive services.ConversationArchiveDB
	if cfg.ArchiveEnabled() {
		db, err := database.Open(cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		if err != nil {
			log.Fatalf("Failed to open archive database: %v", err)
		}
		archive = services.NewConversationArchiveDB(db)
	} else {
		log.Println("Archive database not configured, running in-memory only")
	}

	conversationService := services.NewConversationService(cfg.ConversationRetention, cfg.CleanupInterval)
	usageTracker := services.NewUsageTracker()
	rateLimiter := services.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	usageService := services.NewUsageService(usageTracker, rateLimiter)
	openaiService := services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIMaxTokens, cfg.OpenAITemperature)

	emailService := services.NewEmailService(
		conversationService,
		usageService,
		openaiService,
		archive,
		cfg.GenerationTimeout,
	)

	// Periodic usage retention sweep; the conversation service runs its
	// own.
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			usageTracker.CleanupOldRecords(cfg.UsageRetention)
		}
	}()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, emailService, conversationService, usageService, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
