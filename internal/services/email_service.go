package services

import (
	"context"
	"time"

	apperrors "caboai_go_service/internal/errors"
	"caboai_go_service/internal/models"

	"github.com/rs/zerolog/log"
)

const generateEndpoint = "generate-email"

// EmailService sequences one inbound request through the conversation
// store, the usage gate, and the generator. It holds no request state of
// its own.
type EmailService struct {
	conversations ConversationManager
	usage         UsageGate
	generator     ResponseGenerator
	archive       ConversationArchiveDB // nil when no DB is configured

	generationTimeout time.Duration
}

func NewEmailService(
	conversations ConversationManager,
	usage UsageGate,
	generator ResponseGenerator,
	archive ConversationArchiveDB,
	generationTimeout time.Duration,
) *EmailService {
	return &EmailService{
		conversations:     conversations,
		usage:             usage,
		generator:         generator,
		archive:           archive,
		generationTimeout: generationTimeout,
	}
}

// GenerateEmailResponse handles one request end to end. Rate-limit
// exhaustion comes back as a 429 CustomError; generator failures do not
// fail the request and instead produce a fallback reply with
// Success=false.
func (s *EmailService) GenerateEmailResponse(ctx context.Context, req *models.EmailRequest) (*models.EmailResponse, error) {
	tone := orDefault(req.Tone, models.ToneProfessional)
	industry := orDefault(req.Industry, models.IndustryHospitality)
	language := orDefault(req.Language, models.LanguageAuto)

	// 1. Resolve or create the conversation.
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = s.conversations.CreateConversation(req.UserEmail, req.BusinessID, map[string]interface{}{
			"industry":     industry,
			"initial_tone": tone,
		})
	}

	// 2. Pre-flight gate: no message append, no generator call when
	// already exhausted.
	gate := s.usage.ProcessRequest(req.UserEmail, req.BusinessID, generateEndpoint, 0, "", nil)
	if !gate.Allowed {
		return nil, apperrors.New429Error(gate.Error, gate.RateLimit)
	}

	// 3. History window for generator context.
	history := s.conversations.GetConversationHistory(conversationID, historyContextLimit)

	// 4. The inbound message is committed before generation so it
	// survives a failed or abandoned reply.
	s.conversations.AddMessage(conversationID, "user", req.EmailContent, nil)

	// 5. Generate under the caller timeout.
	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()
	result := s.generator.GenerateEmailResponse(genCtx, req.EmailContent, history, tone, industry, language, req.BusinessContext)

	// 6/7. Commit the assistant reply and the real token cost only on
	// success.
	if result.Success {
		s.conversations.AddMessage(conversationID, "assistant", result.Response, map[string]interface{}{
			"tokens_used": result.TokensUsed,
			"model":       result.Model,
			"tone":        result.Tone,
			"industry":    industry,
		})

		tokenGate := s.usage.ProcessRequest(req.UserEmail, req.BusinessID, generateEndpoint, result.TokensUsed, result.Model, map[string]interface{}{
			"conversation_id": conversationID,
		})
		if !tokenGate.Allowed {
			// Quota was reserved at pre-flight; the reply already
			// exists, so a denial here is only worth a warning.
			log.Warn().Str("conversationID", conversationID).Msg("Token accounting denied by rate limiter after generation")
		}

		s.archiveExchange(conversationID, req, tokenGate.UsageRecord)
	}

	// 8. Fresh usage snapshot for the reply payload.
	stats := s.usage.GetUsageStats(req.UserEmail, req.BusinessID, 1)

	return &models.EmailResponse{
		Response:       result.Response,
		ConversationID: conversationID,
		Tone:           result.Tone,
		Industry:       industry,
		Language:       result.Language,
		TokensUsed:     result.TokensUsed,
		Model:          orDefault(result.Model, "unknown"),
		Success:        result.Success,
		Error:          result.Error,
		RateLimit:      gate.RateLimit,
		UsageStats:     &stats,
	}, nil
}

// archiveExchange persists the exchange off the request path. Failures are
// logged, never surfaced.
func (s *EmailService) archiveExchange(conversationID string, req *models.EmailRequest, usage *models.UsageRecord) {
	if s.archive == nil {
		return
	}

	conv := s.conversations.GetConversation(conversationID)
	if conv == nil {
		return
	}

	go func() {
		if err := s.archive.SaveConversationToDB(conv, req.Industry); err != nil {
			log.Error().Err(err).Str("conversationID", conversationID).Msg("Failed to archive conversation")
			return
		}
		for _, msg := range conv.Messages {
			if err := s.archive.SaveMessageToDB(conversationID, msg); err != nil {
				log.Error().Err(err).Str("messageID", msg.ID).Msg("Failed to archive message")
			}
		}
		if usage != nil {
			key := PrincipalKey(usage.UserID, usage.BusinessID)
			if err := s.archive.SaveUsageToDB(key, usage.Endpoint, s.generator.ModelName(), usage.TokensUsed, usage.CostEstimate, usage.Timestamp); err != nil {
				log.Error().Err(err).Str("key", key).Msg("Failed to archive usage")
			}
		}
	}()
}

// GeneratorStatus exposes the provider status for the health endpoint.
func (s *EmailService) GeneratorStatus() string {
	return s.generator.Status()
}
