package app

import (
	"encoding/json"
	"sync"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// wsConn the write surface of a websocket connection. *websocket.Conn
// satisfies it; tests inject a frame-capturing fake.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// Connection one live transport link. Created on connect, destroyed on
// disconnect, optionally carrying an identity once authenticated. The write
// mutex serializes frames coming from the read loop, broadcast fan-out and
// typing expiry timers, since the underlying conn allows one writer at a time.
type Connection struct {
	id   string
	user *domain.User

	mu sync.Mutex
	ws wsConn
}

// NewConnection wrap a websocket link; user is nil for anonymous connections
func NewConnection(ws wsConn, user *domain.User) *Connection {
	return &Connection{
		id:   uuid.New().String(),
		user: user,
		ws:   ws,
	}
}

// ID process-local connection id
func (c *Connection) ID() string {
	return c.id
}

// User the attached identity, nil when anonymous
func (c *Connection) User() *domain.User {
	return c.user
}

// UserID the attached identity id, empty when anonymous
func (c *Connection) UserID() string {
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// Send push one server event frame to this connection
func (c *Connection) Send(event string, data interface{}) error {
	b, err := json.Marshal(domain.WSEvent{Event: event, Data: data})
	if err != nil {
		return err
	}
	return c.SendRaw(b)
}

// SendRaw write an already-marshaled frame
func (c *Connection) SendRaw(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// WriteResponse write an acknowledgment frame
func (c *Connection) WriteResponse(resp *domain.WSResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := c.SendRaw(b); err != nil {
		logger.Log.Errorf("write response error:", err)
		return err
	}
	return nil
}
