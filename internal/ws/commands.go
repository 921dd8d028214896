package ws

import "encoding/json"

// Client-to-server commands arrive as a typed frame with a raw payload.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	cmdJoinUser       = "join_user"
	cmdJoinChat       = "join_chat"
	cmdLeaveChat      = "leave_chat"
	cmdSendMessage    = "send_message"
	cmdCallStart      = "call_start"
	cmdCallGroupStart = "call_group_start"
)

type joinUserCmd struct {
	UserID string `json:"userId"`
}

type joinChatCmd struct {
	ChatID string `json:"chatId"`
}

type sendMessageCmd struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

type callStartCmd struct {
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
	ToID     string `json:"toId"`
}

type callGroupStartCmd struct {
	FromID   string `json:"fromId"`
	FromName string `json:"fromName"`
	ChatID   string `json:"chatId"`
}
