package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/store"
)

var (
	ErrChatNotFound      = errors.New("chat not found")
	ErrEmptyChatName     = errors.New("chat name required")
	ErrNoParticipants    = errors.New("at least one participant required")
	ErrEmptyMessage      = errors.New("message content required")
	ErrUnknownSender     = errors.New("sender id required")
	ErrInvalidMessageType = errors.New("unknown message type")
)

// ChatRepository abstracts chat persistence and the per-chat message log.
type ChatRepository interface {
	CreateChat(ctx context.Context, name string, participants []string) (models.Chat, error)
	GetChat(ctx context.Context, chatID string) (models.Chat, error)
	ListChatsForUser(ctx context.Context, userID string) ([]models.Chat, error)
	AppendMessage(ctx context.Context, chatID, senderID, content string, msgType models.MessageType) (models.Message, error)
	RenameChat(ctx context.Context, chatID, name string) (models.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// ChatRepo implements ChatRepository on top of the entity store.
type ChatRepo struct {
	chats *store.Store[models.Chat]
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(chats *store.Store[models.Chat]) *ChatRepo {
	return &ChatRepo{chats: chats}
}

// CreateChat persists a new chat with an empty message log.
func (r *ChatRepo) CreateChat(_ context.Context, name string, participants []string) (models.Chat, error) {
	if name == "" {
		return models.Chat{}, ErrEmptyChatName
	}
	if len(participants) == 0 {
		return models.Chat{}, ErrNoParticipants
	}

	unique := make([]string, 0, len(participants))
	for _, p := range participants {
		unique = models.AddUnique(unique, p)
	}

	chat := models.Chat{
		ID:           uuid.New().String(),
		Name:         name,
		Participants: unique,
		Messages:     []models.Message{},
		CreatedAt:    time.Now().UTC(),
	}
	return r.chats.Create(chat)
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(_ context.Context, chatID string) (models.Chat, error) {
	chat, err := r.chats.Get(chatID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// ListChatsForUser returns every chat the user participates in.
func (r *ChatRepo) ListChatsForUser(_ context.Context, userID string) ([]models.Chat, error) {
	return r.chats.Query(func(c models.Chat) bool {
		return c.HasParticipant(userID)
	})
}

// AppendMessage adds a message to the chat's log. The append runs as a
// serialized mutation of the chat key, so concurrent senders land in a
// well-defined total order and no append is lost. The server assigns the
// timestamp.
func (r *ChatRepo) AppendMessage(_ context.Context, chatID, senderID, content string, msgType models.MessageType) (models.Message, error) {
	if senderID == "" {
		return models.Message{}, ErrUnknownSender
	}
	if content == "" {
		return models.Message{}, ErrEmptyMessage
	}
	if msgType != models.MessageText && msgType != models.MessageAudio {
		return models.Message{}, ErrInvalidMessageType
	}

	msg := models.Message{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Type:      msgType,
		Timestamp: time.Now().UTC(),
	}
	if _, err := r.chats.Mutate(chatID, func(c models.Chat) (models.Chat, error) {
		c.Messages = append(c.Messages, msg)
		return c, nil
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Message{}, ErrChatNotFound
		}
		return models.Message{}, err
	}
	return msg, nil
}

// RenameChat updates the display name of the chat.
func (r *ChatRepo) RenameChat(_ context.Context, chatID, name string) (models.Chat, error) {
	if name == "" {
		return models.Chat{}, ErrEmptyChatName
	}
	chat, err := r.chats.Mutate(chatID, func(c models.Chat) (models.Chat, error) {
		c.Name = name
		return c, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// DeleteChat removes the chat and its log.
func (r *ChatRepo) DeleteChat(_ context.Context, chatID string) error {
	err := r.chats.Delete(chatID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrChatNotFound
	}
	return err
}
