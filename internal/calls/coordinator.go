// Package calls runs the ephemeral call-signaling handshake. The
// coordinator holds no durable state: each attempt gets a fresh call id and
// a single call_incoming event routed to the target topic. Accept, decline
// and hang-up are client-local; if the target is offline the call is simply
// never seen.
package calls

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/terenamutolder-oss/pro-node/internal/models"
)

// TopicRouter is the slice of the hub the coordinator needs.
type TopicRouter interface {
	Publish(topic string, event any)
	PublishExcept(topic, exceptSessionID string, event any)
}

// Coordinator routes call invites through the topic router.
type Coordinator struct {
	router TopicRouter
	log    *slog.Logger
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(router TopicRouter, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{router: router, log: log}
}

// StartCall rings a single user on their personal topic.
func (c *Coordinator) StartCall(fromID, fromName, toID string) models.CallSession {
	session := models.CallSession{
		CallID:      uuid.New().String(),
		InitiatorID: fromID,
		TargetTopic: models.UserTopic(toID),
	}
	c.log.Info("call started", "callId", session.CallID, "from", fromID, "to", toID)
	c.router.Publish(session.TargetTopic, models.CallIncomingEvent{
		Type:     models.EventCallIncoming,
		FromID:   fromID,
		FromName: fromName,
		CallID:   session.CallID,
	})
	return session
}

// StartGroupCall rings every subscriber of the chat topic except the
// initiator's own session.
func (c *Coordinator) StartGroupCall(initiatorSessionID, fromID, fromName, chatID string) models.CallSession {
	session := models.CallSession{
		CallID:      uuid.New().String(),
		InitiatorID: fromID,
		TargetTopic: models.ChatTopic(chatID),
		IsGroup:     true,
	}
	c.log.Info("group call started", "callId", session.CallID, "from", fromID, "chat", chatID)
	c.router.PublishExcept(session.TargetTopic, initiatorSessionID, models.CallIncomingEvent{
		Type:     models.EventCallIncoming,
		FromID:   fromID,
		FromName: fromName,
		CallID:   session.CallID,
		IsGroup:  true,
		ChatID:   chatID,
	})
	return session
}
