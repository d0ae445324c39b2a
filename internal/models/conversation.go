package models

import (
	"time"
)

// ConversationMessage is a single message inside a conversation. Messages
// are owned by their parent conversation and are never mutated after append.
type ConversationMessage struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"` // "user" or "assistant"
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Conversation tracks one customer exchange. The message slice is
// append-only; its order is chronological and is fed back to the generator
// verbatim as context.
type Conversation struct {
	ConversationID string                 `json:"conversation_id"`
	UserEmail      string                 `json:"user_email,omitempty"`
	BusinessID     string                 `json:"business_id,omitempty"`
	Messages       []ConversationMessage  `json:"messages"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// HistoryMessage is the role/content pair handed to the generator.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserHistory summarizes a user's activity across conversations.
type UserHistory struct {
	TotalConversations  int        `json:"total_conversations"`
	FirstInteraction    *time.Time `json:"first_interaction,omitempty"`
	IsReturningCustomer bool       `json:"is_returning_customer"`
}

// ContextSummary is the derived view of a conversation returned alongside
// its history.
type ContextSummary struct {
	MessageCount    int          `json:"message_count"`
	Topics          []string     `json:"topics"`
	DurationMinutes float64      `json:"duration_minutes"`
	LastInteraction *time.Time   `json:"last_interaction,omitempty"`
	UserEmail       string       `json:"user_email,omitempty"`
	BusinessID      string       `json:"business_id,omitempty"`
	UserHistory     *UserHistory `json:"user_history,omitempty"`
}

// ConversationAnalytics feeds the health endpoint.
type ConversationAnalytics struct {
	TotalConversations  int     `json:"total_conversations"`
	TotalMessages       int     `json:"total_messages"`
	ActiveLast24h       int     `json:"active_conversations_24h"`
	AvgMessagesPerConvo float64 `json:"average_messages_per_conversation"`
	UniqueUsers         int     `json:"unique_users"`
}
