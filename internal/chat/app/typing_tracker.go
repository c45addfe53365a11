package app

import (
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"
)

// typingExpiry how long a typing indicator survives without a refresh
const typingExpiry = 3 * time.Second

type typingEntry struct {
	room     string
	userID   string
	username string
	conn     *Connection
	timer    *time.Timer
}

// TypingTracker per-room typing indicators with server-side expiry. A start
// arms a timer; repeated starts re-arm it without re-broadcasting; a stop,
// an expiry or a disconnect clears the entry and broadcasts the stop. Expiry
// handlers check pointer identity under the lock so a timer that lost the
// race against a concurrent stop/restart fires as a no-op.
type TypingTracker struct {
	router *RoomRouter

	mu      sync.Mutex
	entries map[string]*typingEntry // room + ":" + user id
}

// NewTypingTracker create TypingTracker
func NewTypingTracker(router *RoomRouter) *TypingTracker {
	return &TypingTracker{
		router:  router,
		entries: make(map[string]*typingEntry),
	}
}

func typingKey(room, userID string) string {
	return room + ":" + userID
}

// Start mark a user typing in a room. Broadcasts only on the idle-to-typing
// transition; a repeat start just pushes the expiry out.
func (t *TypingTracker) Start(room string, c *Connection) {
	user := c.User()
	if user == nil || room == "" {
		return
	}
	key := typingKey(room, user.ID)

	t.mu.Lock()
	if e, ok := t.entries[key]; ok {
		e.timer.Reset(typingExpiry)
		t.mu.Unlock()
		return
	}

	entry := &typingEntry{
		room:     room,
		userID:   user.ID,
		username: user.Username,
		conn:     c,
	}
	entry.timer = time.AfterFunc(typingExpiry, func() {
		t.expire(key, entry)
	})
	t.entries[key] = entry
	t.mu.Unlock()

	t.broadcast(room, user.ID, user.Username, true, c)
}

// Stop clear a user's typing state in a room, no-op when not typing
func (t *TypingTracker) Stop(room string, c *Connection) {
	user := c.User()
	if user == nil || room == "" {
		return
	}
	key := typingKey(room, user.ID)

	t.mu.Lock()
	e, ok := t.entries[key]
	if ok {
		e.timer.Stop()
		delete(t.entries, key)
	}
	t.mu.Unlock()

	if ok {
		t.broadcast(room, user.ID, user.Username, false, c)
	}
}

// StopAll force-stop every typing state held by a disconnecting connection's
// user. Called before the connection is deregistered.
func (t *TypingTracker) StopAll(c *Connection) {
	user := c.User()
	if user == nil {
		return
	}

	t.mu.Lock()
	var stopped []*typingEntry
	for key, e := range t.entries {
		if e.userID != user.ID {
			continue
		}
		e.timer.Stop()
		delete(t.entries, key)
		stopped = append(stopped, e)
	}
	t.mu.Unlock()

	for _, e := range stopped {
		t.broadcast(e.room, e.userID, e.username, false, c)
	}
}

// expire timer callback, only acts when the fired entry is still the live one
func (t *TypingTracker) expire(key string, entry *typingEntry) {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok || e != entry {
		t.mu.Unlock()
		return
	}
	delete(t.entries, key)
	t.mu.Unlock()

	t.broadcast(entry.room, entry.userID, entry.username, false, entry.conn)
}

// broadcast emit a typing:user frame to the room, never echoing the typer
func (t *TypingTracker) broadcast(room, userID, username string, isTyping bool, exclude *Connection) {
	t.router.BroadcastToRoom(room, domain.EventTypingUser, map[string]interface{}{
		"userId":   userID,
		"username": username,
		"room":     room,
		"isTyping": isTyping,
	}, exclude)
}
