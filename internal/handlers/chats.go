package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/repositories"
	"github.com/terenamutolder-oss/pro-node/internal/telemetry"
	"github.com/terenamutolder-oss/pro-node/internal/ws"
)

// ChatHandler manages chat CRUD endpoints.
type ChatHandler struct {
	chatRepo repositories.ChatRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, hub: hub, audit: audit}
}

// ListChats handles GET /api/chats?userId=.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	chats, err := h.chatRepo.ListChatsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chats"})
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	c.JSON(http.StatusOK, chats)
}

// CreateChat handles POST /api/chats. Every participant is notified on its
// personal topic so connected clients can join the new chat topic without a
// reload.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		Name         string   `json:"name" binding:"required"`
		Participants []string `json:"participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	chat, err := h.chatRepo.CreateChat(c.Request.Context(), req.Name, req.Participants)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, participantID := range chat.Participants {
		h.hub.Publish(models.UserTopic(participantID), models.ChatEvent{
			Type: models.EventChatNew,
			Chat: chat,
		})
	}
	h.audit.Emit(c.Request.Context(), "INFO", "chat_create", "chat created", requestIDFromContext(c), "")
	c.JSON(http.StatusOK, chat)
}

// RenameChat handles PUT /api/chats/:id/rename.
func (h *ChatHandler) RenameChat(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	chatID := c.Param("id")
	chat, err := h.chatRepo.RenameChat(c.Request.Context(), chatID, req.Name)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rename chat"})
		return
	}

	h.hub.Publish(models.ChatTopic(chatID), models.ChatEvent{
		Type: models.EventChatUpdated,
		Chat: chat,
	})
	h.audit.Emit(c.Request.Context(), "INFO", "chat_rename", "chat renamed", requestIDFromContext(c), "")
	c.JSON(http.StatusOK, chat)
}

// DeleteChat handles DELETE /api/chats/:id. Subscribers hear chat_deleted
// once, then the topic is dropped for good.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	chatID := c.Param("id")
	if err := h.chatRepo.DeleteChat(c.Request.Context(), chatID); err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chat"})
		return
	}

	topic := models.ChatTopic(chatID)
	h.hub.Publish(topic, models.ChatDeletedEvent{
		Type:   models.EventChatDeleted,
		ChatID: chatID,
	})
	h.hub.DropTopic(topic)
	h.audit.Emit(c.Request.Context(), "INFO", "chat_delete", "chat deleted", requestIDFromContext(c), "")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
