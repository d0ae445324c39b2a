package services

import (
	"time"

	"caboai_go_service/internal/models"

	"gorm.io/gorm"
)

// DefaultConversationArchive implements ConversationArchiveDB on Postgres.
type DefaultConversationArchive struct {
	db *gorm.DB
}

func NewConversationArchiveDB(db *gorm.DB) ConversationArchiveDB {
	return &DefaultConversationArchive{db: db}
}

// SaveConversationToDB upserts the transcript header row.
func (s *DefaultConversationArchive) SaveConversationToDB(conv *models.Conversation, industry string) error {
	row := &models.ArchivedConversation{
		ConversationID: conv.ConversationID,
		UserEmail:      conv.UserEmail,
		BusinessID:     conv.BusinessID,
		Industry:       industry,
		MessageCount:   len(conv.Messages),
	}
	result := s.db.Where(models.ArchivedConversation{ConversationID: conv.ConversationID}).
		Assign(row).
		FirstOrCreate(row)
	return result.Error
}

// SaveMessageToDB stores one message row, skipping messages already
// archived in a previous exchange.
func (s *DefaultConversationArchive) SaveMessageToDB(conversationID string, msg models.ConversationMessage) error {
	row := &models.ArchivedMessage{
		ConversationID: conversationID,
		MessageID:      msg.ID,
		Role:           msg.Role,
		Content:        msg.Content,
		Timestamp:      msg.Timestamp,
	}
	result := s.db.Where(models.ArchivedMessage{MessageID: msg.ID}).FirstOrCreate(row)
	return result.Error
}

// SaveUsageToDB appends one metering row.
func (s *DefaultConversationArchive) SaveUsageToDB(principalKey, endpoint, modelName string, tokensUsed int, costEstimate float64, requestedAt time.Time) error {
	return s.db.Create(&models.ArchivedUsage{
		PrincipalKey: principalKey,
		Endpoint:     endpoint,
		ModelName:    modelName,
		TokensUsed:   tokensUsed,
		CostEstimate: costEstimate,
		RequestedAt:  requestedAt,
	}).Error
}

// GetArchivedConversationFromDB retrieves a transcript header by
// conversation ID.
func (s *DefaultConversationArchive) GetArchivedConversationFromDB(conversationID string) (*models.ArchivedConversation, error) {
	var row models.ArchivedConversation
	if err := s.db.Where("conversation_id = ?", conversationID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
