package services_test

import (
	"context"
	"time"

	"caboai_go_service/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockResponseGenerator struct {
	mock.Mock
}

func (m *MockResponseGenerator) GenerateEmailResponse(ctx context.Context, emailContent string, history []models.HistoryMessage, tone, industry, language string, businessContext *models.BusinessContext) models.GenerationResult {
	args := m.Called(ctx, emailContent, history, tone, industry, language, businessContext)
	return args.Get(0).(models.GenerationResult)
}

func (m *MockResponseGenerator) ModelName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockResponseGenerator) Status() string {
	args := m.Called()
	return args.String(0)
}

type MockConversationArchiveDB struct {
	mock.Mock
}

func (m *MockConversationArchiveDB) SaveConversationToDB(conv *models.Conversation, industry string) error {
	args := m.Called(conv, industry)
	return args.Error(0)
}

func (m *MockConversationArchiveDB) SaveMessageToDB(conversationID string, msg models.ConversationMessage) error {
	args := m.Called(conversationID, msg)
	return args.Error(0)
}

func (m *MockConversationArchiveDB) SaveUsageToDB(principalKey, endpoint, modelName string, tokensUsed int, costEstimate float64, requestedAt time.Time) error {
	args := m.Called(principalKey, endpoint, modelName, tokensUsed, costEstimate, requestedAt)
	return args.Error(0)
}

func (m *MockConversationArchiveDB) GetArchivedConversationFromDB(conversationID string) (*models.ArchivedConversation, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArchivedConversation), args.Error(1)
}
