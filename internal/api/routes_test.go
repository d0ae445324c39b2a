package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caboai_go_service/cmd/api/config"
	"caboai_go_service/internal/models"
	"caboai_go_service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubGenerator struct{}

func (stubGenerator) GenerateEmailResponse(_ context.Context, _ string, _ []models.HistoryMessage, tone, industry, language string, _ *models.BusinessContext) models.GenerationResult {
	return models.GenerationResult{
		Response:   "Thank you for reaching out.",
		Tone:       tone,
		Industry:   industry,
		Language:   language,
		TokensUsed: 42,
		Model:      "gpt-4",
		Success:    true,
	}
}

func (stubGenerator) ModelName() string { return "gpt-4" }
func (stubGenerator) Status() string    { return "connected" }

func newTestRouter(apiKey string) (*gin.Engine, *services.ConversationService) {
	gin.SetMode(gin.TestMode)

	conversations := services.NewConversationService(30*24*time.Hour, 0)
	usage := services.NewUsageService(
		services.NewUsageTracker(),
		services.NewRateLimiter(100, 60*time.Second),
	)
	emailService := services.NewEmailService(conversations, usage, stubGenerator{}, nil, 5*time.Second)

	cfg := &config.Config{ServiceAPIKey: apiKey}

	r := gin.New()
	SetupRoutes(r, emailService, conversations, usage, cfg)
	return r, conversations
}

func TestRootEndpoint(t *testing.T) {
	r, _ := newTestRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, serviceVersion, body["version"])
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body models.HealthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "connected", body.OpenAIStatus)
	assert.Equal(t, "disabled", body.ArchiveStatus)
}

func TestGenerateEmailEndpoint(t *testing.T) {
	r, conversations := newTestRouter("")

	payload := `{"email_content":"Hello, do you have rooms available?","user_email":"guest@example.com"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-email", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body models.EmailResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 42, body.TokensUsed)
	assert.NotEmpty(t, body.ConversationID)
	assert.NotNil(t, conversations.GetConversation(body.ConversationID))
}

func TestGenerateEmailRejectsInvalidBody(t *testing.T) {
	r, _ := newTestRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-email", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestGenerateEmailRequiresAPIKey(t *testing.T) {
	r, _ := newTestRouter("secret-key")

	payload := `{"email_content":"Hello"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-email", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/generate-email", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret-key")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatAlias(t *testing.T) {
	r, _ := newTestRouter("")

	payload := `{"email_content":"Hola, quisiera información"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetConversationNotFound(t *testing.T) {
	r, _ := newTestRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversation/no-such-id", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Conversation not found")
}

func TestGetConversationHistory(t *testing.T) {
	r, conversations := newTestRouter("")

	id := conversations.CreateConversation("guest@example.com", "biz-1", nil)
	conversations.AddMessage(id, "user", "I want to book a room", nil)
	conversations.AddMessage(id, "assistant", "Of course, when would you like to stay?", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversation/"+id, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body models.ConversationHistoryResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id, body.ConversationID)
	assert.Len(t, body.Messages, 2)
	assert.Contains(t, body.ContextSummary.Topics, "booking")
}

func TestUsageStatsRejectsBadDays(t *testing.T) {
	r, _ := newTestRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/usage-stats?days=zero", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitStatusEndpoint(t *testing.T) {
	r, _ := newTestRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rate-limit-status?user_id=guest@example.com", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var info models.RateLimitInfo
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 100, info.RequestsRemaining)
}