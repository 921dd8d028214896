package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/repositories"
	"github.com/terenamutolder-oss/pro-node/internal/telemetry"
	"github.com/terenamutolder-oss/pro-node/internal/ws"
)

// FriendHandler manages the invite/accept flow.
type FriendHandler struct {
	userRepo repositories.UserRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewFriendHandler builds a FriendHandler.
func NewFriendHandler(userRepo repositories.UserRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{userRepo: userRepo, hub: hub, audit: audit}
}

// Invite handles POST /api/friends/invite.
func (h *FriendHandler) Invite(c *gin.Context) {
	var req struct {
		FromID     string `json:"fromId" binding:"required"`
		ToUsername string `json:"toUsername" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	recipient, err := h.userRepo.SendInvite(c.Request.Context(), req.FromID, req.ToUsername)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.hub.Publish(models.UserTopic(recipient.ID), models.NotificationEvent{
		Type: models.EventNotification,
		Kind: models.NotificationInvite,
		From: req.FromID,
	})
	h.audit.Emit(c.Request.Context(), "INFO", "friend_invite", "invite sent", requestIDFromContext(c), req.FromID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Accept handles POST /api/friends/accept.
func (h *FriendHandler) Accept(c *gin.Context) {
	var req struct {
		UserID       string `json:"userId" binding:"required"`
		InviteFromID string `json:"inviteFromId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	if err := h.userRepo.AcceptInvite(c.Request.Context(), req.UserID, req.InviteFromID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inviterTopic := models.UserTopic(req.InviteFromID)
	h.hub.Publish(inviterTopic, models.NotificationEvent{
		Type: models.EventNotification,
		Kind: models.NotificationInviteAccepted,
		From: req.UserID,
	})
	h.hub.Publish(inviterTopic, models.FriendAcceptedEvent{
		Type:     models.EventFriendAccepted,
		FriendID: req.UserID,
	})
	h.audit.Emit(c.Request.Context(), "INFO", "friend_accept", "invite accepted", requestIDFromContext(c), req.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
