package models

import "time"

// MessageType distinguishes plain text from audio payload references.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageAudio MessageType = "audio"
)

// Message is a single immutable entry in a chat log. Log order is the
// append order serialized by the entity store.
type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chatId"`
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// Chat is a named group conversation. Participants are fixed at creation.
type Chat struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Key returns the storage key of the chat.
func (c Chat) Key() string { return c.ID }

// HasParticipant reports whether userID belongs to the chat.
func (c Chat) HasParticipant(userID string) bool { return contains(c.Participants, userID) }
