package ws

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
	maxFrameSize   = 64 * 1024
)

// Session is one live websocket connection. It carries at most one user
// identity, set by the join_user command; a user with several devices holds
// several sessions.
type Session struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	log  *slog.Logger

	mu     sync.RWMutex
	userID string

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(conn *websocket.Conn, log *slog.Logger) *Session {
	return &Session{
		id:   newConnID(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  log,
		done: make(chan struct{}),
	}
}

// ID returns the session's connection id.
func (s *Session) ID() string { return s.id }

// UserID returns the authenticated user id, or "" before join_user.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) setUserID(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

// enqueue hands a payload to the write pump without blocking. It reports
// false when the session's buffer is full or the session is closing; the
// event is then simply not delivered (best-effort contract).
func (s *Session) enqueue(payload []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// writePump drains the send queue onto the connection and keeps the
// connection alive with periodic pings. It exits on the first write error
// or once the session closes.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.log.Debug("websocket write failed", "session", s.id, "error", err)
				s.close()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

