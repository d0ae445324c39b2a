package api

import (
	"net/http"
	"strconv"
	"time"

	"caboai_go_service/cmd/api/config"
	"caboai_go_service/internal/auth"
	apperrors "caboai_go_service/internal/errors"
	"caboai_go_service/internal/models"
	"caboai_go_service/internal/services"

	"github.com/gin-gonic/gin"
)

const serviceVersion = "1.0.0"

func SetupRoutes(
	r *gin.Engine,
	emailService *services.EmailService,
	conversationService services.ConversationManager,
	usageService services.UsageGate,
	cfg *config.Config,
) {
	r.GET("/", rootHandler)
	r.GET("/health", healthHandler(emailService, conversationService, cfg))

	guarded := r.Group("/", auth.APIKeyMiddleware(cfg.ServiceAPIKey))
	{
		guarded.POST("/generate-email", generateEmailHandler(emailService))
		// Legacy alias kept for older integrations.
		guarded.POST("/chat", generateEmailHandler(emailService))
	}

	r.GET("/conversation/:conversation_id", getConversationHandler(conversationService))
	r.GET("/usage-stats", getUsageStatsHandler(usageService))
	r.GET("/rate-limit-status", getRateLimitStatusHandler(usageService))
}

func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "CaboAi AI Service is running!",
		"status":    "healthy",
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func healthHandler(emailService *services.EmailService, conversationService services.ConversationManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		analytics := conversationService.GetAnalytics()

		archiveStatus := "disabled"
		if cfg.ArchiveEnabled() {
			archiveStatus = "enabled"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:            "healthy",
			Timestamp:         time.Now().UTC().Format(time.RFC3339),
			Version:           serviceVersion,
			OpenAIStatus:      emailService.GeneratorStatus(),
			ArchiveStatus:     archiveStatus,
			ConversationCount: analytics.TotalConversations,
			TotalMessages:     analytics.TotalMessages,
		})
	}
}

func generateEmailHandler(emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid request body: "+err.Error()))
			return
		}

		resp, err := emailService.GenerateEmailResponse(c.Request.Context(), &req)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func getConversationHandler(conversationService services.ConversationManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversation_id")

		conv := conversationService.GetConversation(conversationID)
		if conv == nil {
			apperrors.HandleError(c, apperrors.New404Error("Conversation not found"))
			return
		}

		messageCount := 10
		if raw := c.Query("message_count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				apperrors.HandleError(c, apperrors.New400Error("message_count must be a positive integer"))
				return
			}
			messageCount = n
		}

		c.JSON(http.StatusOK, models.ConversationHistoryResponse{
			ConversationID: conversationID,
			Messages:       conversationService.GetConversationHistory(conversationID, messageCount),
			ContextSummary: conversationService.GetConversationContext(conversationID),
			CreatedAt:      conv.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:      conv.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
}

func getUsageStatsHandler(usageService services.UsageGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		if raw := c.Query("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				apperrors.HandleError(c, apperrors.New400Error("days must be a positive integer"))
				return
			}
			days = n
		}

		stats := usageService.GetUsageStats(c.Query("user_id"), c.Query("business_id"), days)
		c.JSON(http.StatusOK, stats)
	}
}

func getRateLimitStatusHandler(usageService services.UsageGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.DefaultQuery("endpoint", "default")
		info := usageService.GetRateLimitStatus(c.Query("user_id"), c.Query("business_id"), endpoint)
		c.JSON(http.StatusOK, info)
	}
}
