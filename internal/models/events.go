package models

import "time"

// Server-to-client events delivered over the websocket channel. Every event
// carries a type tag so clients can dispatch on a single frame shape.

const (
	EventMessage        = "message"
	EventNotification   = "notification"
	EventChatNew        = "chat_new"
	EventChatUpdated    = "chat_updated"
	EventChatDeleted    = "chat_deleted"
	EventFriendAccepted = "friend_accepted"
	EventCallIncoming   = "call_incoming"
)

// MessageEvent announces a freshly appended chat message.
type MessageEvent struct {
	Type      string      `json:"type"`
	ChatID    string      `json:"chatId"`
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content"`
	MsgType   MessageType `json:"msgType"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessageEvent builds a MessageEvent from a stored message.
func NewMessageEvent(m Message) MessageEvent {
	return MessageEvent{
		Type:      EventMessage,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		MsgType:   m.Type,
		Timestamp: m.Timestamp,
	}
}

// NotificationEvent is a personal alert (invite, invite accepted).
type NotificationEvent struct {
	Type string `json:"type"`
	Kind string `json:"kind"`
	From string `json:"from"`
}

const (
	NotificationInvite         = "invite"
	NotificationInviteAccepted = "invite_accepted"
)

// ChatEvent carries a full chat snapshot for chat_new and chat_updated.
type ChatEvent struct {
	Type string `json:"type"`
	Chat Chat   `json:"chat"`
}

// ChatDeletedEvent tells subscribers the chat is gone for good.
type ChatDeletedEvent struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
}

// FriendAcceptedEvent lets the inviter's client refresh its friend list.
type FriendAcceptedEvent struct {
	Type     string `json:"type"`
	FriendID string `json:"friendId"`
}

// CallIncomingEvent rings the target user or chat.
type CallIncomingEvent struct {
	Type     string `json:"type"`
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
	CallID   string `json:"callId"`
	IsGroup  bool   `json:"isGroup"`
	ChatID   string `json:"chatId,omitempty"`
}
