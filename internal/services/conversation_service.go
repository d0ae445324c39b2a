package services

import (
	"strings"
	"sync"
	"time"

	"caboai_go_service/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// topicKeywords maps a topic tag to the substrings that trigger it in
// user-authored messages. Matching is case-insensitive containment.
var topicKeywords = []struct {
	Topic    string
	Keywords []string
}{
	{"booking", []string{"booking", "reservation", "book"}},
	{"pricing", []string{"price", "cost", "rate", "fee"}},
	{"information", []string{"info", "information", "details", "about"}},
	{"modification", []string{"cancel", "change", "modify", "reschedule"}},
}

// ConversationService owns all conversation state for the process. Every
// exported method takes the mutex; callers only ever see copies of the
// stored messages.
type ConversationService struct {
	mu                sync.RWMutex
	conversations     map[string]*models.Conversation
	userConversations map[string][]string // user email -> conversation IDs

	retention       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	stop            chan struct{}
}

func NewConversationService(retention, cleanupInterval time.Duration) *ConversationService {
	cs := &ConversationService{
		conversations:     make(map[string]*models.Conversation),
		userConversations: make(map[string][]string),
		retention:         retention,
		cleanupInterval:   cleanupInterval,
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go cs.periodicCleanup()
	}
	return cs
}

// CreateConversation allocates a new conversation and returns its ID. It
// never fails.
func (cs *ConversationService) CreateConversation(userEmail, businessID string, metadata map[string]interface{}) string {
	conversationID := uuid.New().String()
	now := cs.now()

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.conversations[conversationID] = &models.Conversation{
		ConversationID: conversationID,
		UserEmail:      userEmail,
		BusinessID:     businessID,
		Messages:       []models.ConversationMessage{},
		CreatedAt:      now,
		UpdatedAt:      now,
		Metadata:       metadata,
	}
	if userEmail != "" {
		cs.userConversations[userEmail] = append(cs.userConversations[userEmail], conversationID)
	}

	log.Info().Str("conversationID", conversationID).Str("userEmail", userEmail).Msg("Created conversation")
	return conversationID
}

// AddMessage appends a message to a conversation. An unknown ID is a
// recoverable caller error: it logs and returns false.
func (cs *ConversationService) AddMessage(conversationID, role, content string, metadata map[string]interface{}) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	conv, ok := cs.conversations[conversationID]
	if !ok {
		log.Warn().Str("conversationID", conversationID).Msg("Conversation not found")
		return false
	}

	now := cs.now()
	conv.Messages = append(conv.Messages, models.ConversationMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: now,
		Metadata:  metadata,
	})
	conv.UpdatedAt = now
	return true
}

// GetConversation returns a snapshot of a conversation, or nil if unknown.
func (cs *ConversationService) GetConversation(conversationID string) *models.Conversation {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	conv, ok := cs.conversations[conversationID]
	if !ok {
		return nil
	}
	snapshot := *conv
	snapshot.Messages = append([]models.ConversationMessage(nil), conv.Messages...)
	return &snapshot
}

// GetConversationHistory returns the last messageCount messages in
// chronological order, formatted for the generator. Unknown IDs yield an
// empty slice.
func (cs *ConversationService) GetConversationHistory(conversationID string, messageCount int) []models.HistoryMessage {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	conv, ok := cs.conversations[conversationID]
	if !ok {
		return []models.HistoryMessage{}
	}

	msgs := conv.Messages
	if messageCount > 0 && len(msgs) > messageCount {
		msgs = msgs[len(msgs)-messageCount:]
	}
	history := make([]models.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, models.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	return history
}

// GetConversationContext derives the summary view of a conversation,
// including cross-conversation stats when a user email is attached. Unknown
// IDs yield nil.
func (cs *ConversationService) GetConversationContext(conversationID string) *models.ContextSummary {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	conv, ok := cs.conversations[conversationID]
	if !ok {
		return nil
	}

	summary := &models.ContextSummary{
		MessageCount: len(conv.Messages),
		Topics:       extractTopics(conv.Messages),
		UserEmail:    conv.UserEmail,
		BusinessID:   conv.BusinessID,
	}
	if len(conv.Messages) > 0 {
		summary.DurationMinutes = conv.UpdatedAt.Sub(conv.CreatedAt).Minutes()
		last := conv.UpdatedAt
		summary.LastInteraction = &last
	}

	if conv.UserEmail != "" {
		ids := cs.userConversations[conv.UserEmail]
		var earliest *time.Time
		count := 0
		for _, id := range ids {
			uc, ok := cs.conversations[id]
			if !ok {
				continue
			}
			count++
			if earliest == nil || uc.CreatedAt.Before(*earliest) {
				created := uc.CreatedAt
				earliest = &created
			}
		}
		summary.UserHistory = &models.UserHistory{
			TotalConversations:  count,
			FirstInteraction:    earliest,
			IsReturningCustomer: count > 1,
		}
	}
	return summary
}

// GetUserConversations returns snapshots of every conversation registered
// under a user email.
func (cs *ConversationService) GetUserConversations(userEmail string) []*models.Conversation {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	ids := cs.userConversations[userEmail]
	out := make([]*models.Conversation, 0, len(ids))
	for _, id := range ids {
		conv, ok := cs.conversations[id]
		if !ok {
			continue
		}
		snapshot := *conv
		snapshot.Messages = append([]models.ConversationMessage(nil), conv.Messages...)
		out = append(out, &snapshot)
	}
	return out
}

// CleanupOldConversations evicts every conversation whose last update is
// older than maxAge and unregisters it from its user's list. Returns the
// number removed.
func (cs *ConversationService) CleanupOldConversations(maxAge time.Duration) int {
	cutoff := cs.now().Add(-maxAge)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	removed := 0
	for id, conv := range cs.conversations {
		if !conv.UpdatedAt.Before(cutoff) {
			continue
		}
		if conv.UserEmail != "" {
			ids := cs.userConversations[conv.UserEmail]
			kept := ids[:0]
			for _, cid := range ids {
				if cid != id {
					kept = append(kept, cid)
				}
			}
			if len(kept) == 0 {
				delete(cs.userConversations, conv.UserEmail)
			} else {
				cs.userConversations[conv.UserEmail] = kept
			}
		}
		delete(cs.conversations, id)
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Cleaned up old conversations")
	}
	return removed
}

// GetAnalytics returns store-wide counts for the health endpoint.
func (cs *ConversationService) GetAnalytics() models.ConversationAnalytics {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	analytics := models.ConversationAnalytics{
		TotalConversations: len(cs.conversations),
		UniqueUsers:        len(cs.userConversations),
	}
	dayAgo := cs.now().Add(-24 * time.Hour)
	for _, conv := range cs.conversations {
		analytics.TotalMessages += len(conv.Messages)
		if conv.UpdatedAt.After(dayAgo) {
			analytics.ActiveLast24h++
		}
	}
	if analytics.TotalConversations > 0 {
		analytics.AvgMessagesPerConvo = float64(analytics.TotalMessages) / float64(analytics.TotalConversations)
	}
	return analytics
}

// Stop ends the background retention sweep.
func (cs *ConversationService) Stop() {
	close(cs.stop)
}

func (cs *ConversationService) periodicCleanup() {
	ticker := time.NewTicker(cs.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cs.CleanupOldConversations(cs.retention)
		case <-cs.stop:
			return
		}
	}
}

func extractTopics(messages []models.ConversationMessage) []string {
	seen := make(map[string]bool)
	topics := []string{}
	for _, msg := range messages {
		if msg.Role != "user" {
			continue
		}
		content := strings.ToLower(msg.Content)
		for _, group := range topicKeywords {
			if seen[group.Topic] {
				continue
			}
			for _, kw := range group.Keywords {
				if strings.Contains(content, kw) {
					seen[group.Topic] = true
					topics = append(topics, group.Topic)
					break
				}
			}
		}
	}
	return topics
}
