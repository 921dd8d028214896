package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/terenamutolder-oss/pro-node/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	args := m.Called(ctx, username, passwordHash)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) FindByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SendInvite(ctx context.Context, fromID, toUsername string) (models.User, error) {
	args := m.Called(ctx, fromID, toUsername)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) AcceptInvite(ctx context.Context, userID, inviteFromID string) error {
	args := m.Called(ctx, userID, inviteFromID)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateChat(ctx context.Context, name string, participants []string) (models.Chat, error) {
	args := m.Called(ctx, name, participants)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID string) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) AppendMessage(ctx context.Context, chatID, senderID, content string, msgType models.MessageType) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content, msgType)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *ChatRepositoryMock) RenameChat(ctx context.Context, chatID, name string) (models.Chat, error) {
	args := m.Called(ctx, chatID, name)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) DeleteChat(ctx context.Context, chatID string) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

type TopicRouterMock struct {
	mock.Mock
}

func (m *TopicRouterMock) Publish(topic string, event any) {
	m.Called(topic, event)
}

func (m *TopicRouterMock) PublishExcept(topic, exceptSessionID string, event any) {
	m.Called(topic, exceptSessionID, event)
}
