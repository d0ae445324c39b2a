package services

import (
	"context"
	"time"

	"caboai_go_service/internal/models"
)

// ConversationManager is the conversation-store surface the orchestrator
// and HTTP layer depend on.
type ConversationManager interface {
	CreateConversation(userEmail, businessID string, metadata map[string]interface{}) string
	AddMessage(conversationID, role, content string, metadata map[string]interface{}) bool
	GetConversation(conversationID string) *models.Conversation
	GetConversationHistory(conversationID string, messageCount int) []models.HistoryMessage
	GetConversationContext(conversationID string) *models.ContextSummary
	GetAnalytics() models.ConversationAnalytics
}

// UsageGate combines rate limiting and usage accounting behind one entry
// point.
type UsageGate interface {
	ProcessRequest(userID, businessID, endpoint string, tokensUsed int, model string, metadata map[string]interface{}) models.ProcessResult
	GetUsageStats(userID, businessID string, days int) models.UsageStats
	GetRateLimitStatus(userID, businessID, endpoint string) models.RateLimitInfo
}

// ResponseGenerator is the external LLM provider boundary.
type ResponseGenerator interface {
	GenerateEmailResponse(ctx context.Context, emailContent string, history []models.HistoryMessage, tone, industry, language string, businessContext *models.BusinessContext) models.GenerationResult
	ModelName() string
	Status() string
}

// ConversationArchiveDB persists transcripts and metering rows to Postgres.
// All methods are best-effort from the caller's perspective.
type ConversationArchiveDB interface {
	SaveConversationToDB(conv *models.Conversation, industry string) error
	SaveMessageToDB(conversationID string, msg models.ConversationMessage) error
	SaveUsageToDB(principalKey, endpoint, model string, tokensUsed int, costEstimate float64, requestedAt time.Time) error
	GetArchivedConversationFromDB(conversationID string) (*models.ArchivedConversation, error)
}
