package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/terenamutolder-oss/pro-node/internal/calls"
	"github.com/terenamutolder-oss/pro-node/internal/models"
	"github.com/terenamutolder-oss/pro-node/internal/observability"
	"github.com/terenamutolder-oss/pro-node/internal/repositories"
)

// Handler upgrades connections and dispatches client commands. A failing
// command is logged and dropped; the connection stays up.
type Handler struct {
	hub      *Hub
	chatRepo repositories.ChatRepository
	calls    *calls.Coordinator
	log      *slog.Logger
}

// NewHandler constructs a websocket Handler.
func NewHandler(hub *Hub, chatRepo repositories.ChatRepository, coordinator *calls.Coordinator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{hub: hub, chatRepo: chatRepo, calls: coordinator, log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and runs the session until disconnect.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("pro-node/ws").Start(c.Request.Context(), "ws.handshake")
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	span.End()
	if err != nil {
		return
	}

	sess := newSession(conn, h.log)
	observability.IncWSActive("session")
	observability.IncWSEvent("session", "ws_connect")
	h.log.Info("session connected", "session", sess.ID(), "ip", observability.IPFromRequest(c.Request))

	go sess.writePump()
	h.readLoop(sess)
}

func (h *Handler) readLoop(sess *Session) {
	defer func() {
		h.hub.RemoveSession(sess)
		sess.close()
		observability.DecWSActive("session")
		observability.IncWSEvent("session", "ws_disconnect")
		h.log.Info("session disconnected", "session", sess.ID(), "user", sess.UserID())
	}()

	sess.conn.SetReadLimit(maxFrameSize)
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("session", "ws_error")
				h.log.Debug("websocket read failed", "session", sess.ID(), "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			h.log.Warn("malformed frame", "session", sess.ID(), "error", err)
			continue
		}
		h.dispatch(sess, f)
	}
}

func (h *Handler) dispatch(sess *Session, f frame) {
	ctx := context.Background()
	switch f.Type {
	case cmdJoinUser:
		var cmd joinUserCmd
		if err := json.Unmarshal(f.Data, &cmd); err != nil || cmd.UserID == "" {
			h.log.Warn("invalid join_user", "session", sess.ID(), "error", err)
			return
		}
		sess.setUserID(cmd.UserID)
		h.hub.Subscribe(sess, models.UserTopic(cmd.UserID))

	case cmdJoinChat:
		var cmd joinChatCmd
		if err := json.Unmarshal(f.Data, &cmd); err != nil || cmd.ChatID == "" {
			h.log.Warn("invalid join_chat", "session", sess.ID(), "error", err)
			return
		}
		h.hub.Subscribe(sess, models.ChatTopic(cmd.ChatID))

	case cmdLeaveChat:
		var cmd joinChatCmd
		if err := json.Unmarshal(f.Data, &cmd); err != nil || cmd.ChatID == "" {
			return
		}
		h.hub.Unsubscribe(sess, models.ChatTopic(cmd.ChatID))

	case cmdSendMessage:
		var cmd sendMessageCmd
		if err := json.Unmarshal(f.Data, &cmd); err != nil {
			h.log.Warn("invalid send_message", "session", sess.ID(), "error", err)
			return
		}
		msgType := models.MessageType(cmd.Type)
		if msgType == "" {
			msgType = models.MessageText
		}
		msg, err := h.chatRepo.AppendMessage(ctx, cmd.ChatID, cmd.SenderID, cmd.Content, msgType)
		if err != nil {
			h.log.Warn("append message failed", "session", sess.ID(), "chat", cmd.ChatID, "error", err)
			return
		}
		h.hub.Publish(models.ChatTopic(cmd.ChatID), models.NewMessageEvent(msg))

	case cmdCallStart:
		var cmd callStartCmd
		if err := json.Unmarshal(f.Data, &cmd); err != nil || cmd.ToID == "" {
			h.log.Warn("invalid call_start", "session", sess.ID(), "error", err)
			return
		}
		h.calls.StartCall(cmd.FromID, cmd.FromName, cmd.ToID)

	case cmdCallGroupStart:
		var cmd callGroupStartCmd
		if err := json.Unmarshal(f.Data, &cmd); err != nil || cmd.ChatID == "" {
			h.log.Warn("invalid call_group_start", "session", sess.ID(), "error", err)
			return
		}
		h.calls.StartGroupCall(sess.ID(), cmd.FromID, cmd.FromName, cmd.ChatID)

	default:
		h.log.Warn("unknown command", "session", sess.ID(), "type", f.Type)
	}
}
