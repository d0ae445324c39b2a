package models

import (
	"time"

	"gorm.io/gorm"
)

// ArchivedConversation is the Postgres row for a conversation transcript.
// Archival is best-effort; the in-memory store stays authoritative.
type ArchivedConversation struct {
	gorm.Model
	ConversationID string `gorm:"index;unique"`
	UserEmail      string `gorm:"index"`
	BusinessID     string `gorm:"index"`
	Industry       string
	MessageCount   int
}

// ArchivedMessage is one message row belonging to an archived conversation.
type ArchivedMessage struct {
	gorm.Model
	ConversationID string `gorm:"index"`
	MessageID      string `gorm:"index;unique"`
	Role           string
	Content        string `gorm:"type:text"`
	Timestamp      time.Time
}

// ArchivedUsage is a metering row, one per billed request.
type ArchivedUsage struct {
	gorm.Model
	PrincipalKey string `gorm:"index"`
	Endpoint     string `gorm:"index"`
	ModelName    string
	TokensUsed   int
	CostEstimate float64
	RequestedAt  time.Time `gorm:"index"`
}
