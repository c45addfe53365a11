package app

import (
	"sync"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// SessionRegistry maps identities to their live connections. A user with
// several tabs holds several entries in its binding set; the user is online
// exactly while that set is non-empty. All mutation happens under one mutex
// so the last-connection check in Deregister is atomic with the removal.
type SessionRegistry struct {
	mu     sync.RWMutex
	byConn map[string]*Connection            // conn id -> conn (anonymous included)
	byUser map[string]map[string]*Connection // user id -> conn id -> conn
}

// NewSessionRegistry create SessionRegistry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byConn: make(map[string]*Connection),
		byUser: make(map[string]map[string]*Connection),
	}
}

// Register track a connection. Returns true when this is the identity's
// first live connection, the signal the presence tracker keys its online
// transition on. Anonymous connections are tracked but never bound.
func (r *SessionRegistry) Register(c *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byConn[c.ID()] = c

	uid := c.UserID()
	if uid == "" {
		return false
	}

	set := r.byUser[uid]
	if set == nil {
		set = make(map[string]*Connection)
		r.byUser[uid] = set
	}
	set[c.ID()] = c

	logger.Log.Debug("session register",
		zap.String("connID", c.ID()),
		zap.String("userID", uid),
		zap.Int("bindings", len(set)))

	return len(set) == 1
}

// Deregister drop a connection. Returns the identity when this was its last
// connection (a true offline transition), nil otherwise.
func (r *SessionRegistry) Deregister(c *Connection) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byConn, c.ID())

	uid := c.UserID()
	if uid == "" {
		return nil
	}

	set := r.byUser[uid]
	if set == nil {
		return nil
	}
	delete(set, c.ID())
	if len(set) > 0 {
		return nil
	}
	delete(r.byUser, uid)
	return c.User()
}

// ConnectionsFor all live connections bound to a user id
func (r *SessionRegistry) ConnectionsFor(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	if len(set) == 0 {
		return nil
	}
	conns := make([]*Connection, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Connections every live connection, anonymous included
func (r *SessionRegistry) Connections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.byConn))
	for _, c := range r.byConn {
		conns = append(conns, c)
	}
	return conns
}
