package models

// Topics are the named fan-out channels of the router: each user has a
// personal topic for notifications and calls, each chat has one for its
// message stream.

// UserTopic returns the personal topic of a user.
func UserTopic(userID string) string { return "user:" + userID }

// ChatTopic returns the event topic of a chat.
func ChatTopic(chatID string) string { return "chat:" + chatID }
