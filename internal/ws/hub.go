// Package ws is the realtime layer: it tracks live websocket sessions,
// their topic subscriptions, and fans published events out to subscribers.
package ws

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/terenamutolder-oss/pro-node/internal/observability"
)

// Hub maps topics to the sessions subscribed to them. Delivery is
// best-effort and at-most-once per subscribed session per publish; a
// session that is offline at publish time recovers via a full refetch.
type Hub struct {
	mu       sync.RWMutex
	topics   map[string]map[*Session]bool
	sessions map[*Session]map[string]bool
	log      *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		topics:   make(map[string]map[*Session]bool),
		sessions: make(map[*Session]map[string]bool),
		log:      log,
	}
}

// Subscribe adds the session to a topic. Subscribing twice is a no-op.
func (h *Hub) Subscribe(s *Session, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*Session]bool)
	}
	h.topics[topic][s] = true
	if _, ok := h.sessions[s]; !ok {
		h.sessions[s] = make(map[string]bool)
	}
	h.sessions[s][topic] = true
}

// Unsubscribe removes the session from a topic.
func (h *Hub) Unsubscribe(s *Session, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropSubscription(s, topic)
}

// RemoveSession drops the session from every topic it joined. Called on
// disconnect.
func (h *Hub) RemoveSession(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range h.sessions[s] {
		h.dropSubscription(s, topic)
	}
	delete(h.sessions, s)
}

// DropTopic unsubscribes every session from the topic. Used when a chat is
// deleted and its topic becomes permanently inert.
func (h *Hub) DropTopic(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.topics[topic] {
		h.dropSubscription(s, topic)
	}
}

// Publish delivers event to every session currently subscribed to topic.
func (h *Hub) Publish(topic string, event any) {
	h.PublishExcept(topic, "", event)
}

// PublishExcept delivers event to every subscriber of topic except the
// session with the given id. Group call invites use this to avoid ringing
// the initiator's own connection.
func (h *Hub) PublishExcept(topic, exceptSessionID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("marshal event", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.topics[topic]))
	for s := range h.topics[topic] {
		if exceptSessionID != "" && s.ID() == exceptSessionID {
			continue
		}
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	kind := topicKind(topic)
	for _, s := range targets {
		if !s.enqueue(payload) {
			h.log.Warn("session send buffer full, dropping event",
				"topic", topic, "session", s.ID())
			observability.IncWSEvent(kind, "publish_drop")
			continue
		}
		observability.IncWSEvent(kind, "publish")
	}
}

// SubscriberCount returns how many sessions are subscribed to topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// dropSubscription must be called with h.mu held.
func (h *Hub) dropSubscription(s *Session, topic string) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	if topics, ok := h.sessions[s]; ok {
		delete(topics, topic)
	}
}

func topicKind(topic string) string {
	if kind, _, ok := strings.Cut(topic, ":"); ok {
		return kind
	}
	return "unknown"
}
