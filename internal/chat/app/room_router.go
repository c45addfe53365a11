package app

import (
	"encoding/json"
	"sync"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

const (
	roomChannelPrefix = "chat:events:"
	allChannel        = "chat:events:all"
	userChannelPrefix = "chat:user:"
)

// RoomRouter fan-out of server events to room members, user bindings and the
// whole process. Every broadcast is mirrored to redis pub/sub when a publisher
// is wired, so a second routing process can pick the events up; local delivery
// never waits on the mirror.
type RoomRouter struct {
	registry *SessionRegistry
	pubsub   repository.EventPublisher

	mu     sync.RWMutex
	rooms  map[string]map[string]*Connection // room -> conn id -> conn
	joined map[string]map[string]bool        // conn id -> room -> joined
}

// NewRoomRouter create RoomRouter, pubsub may be nil
func NewRoomRouter(registry *SessionRegistry, pubsub repository.EventPublisher) *RoomRouter {
	return &RoomRouter{
		registry: registry,
		pubsub:   pubsub,
		rooms:    make(map[string]map[string]*Connection),
		joined:   make(map[string]map[string]bool),
	}
}

// JoinRoom subscribe a connection to a room's broadcasts, idempotent
func (r *RoomRouter) JoinRoom(c *Connection, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.rooms[room]
	if set == nil {
		set = make(map[string]*Connection)
		r.rooms[room] = set
	}
	set[c.ID()] = c

	rs := r.joined[c.ID()]
	if rs == nil {
		rs = make(map[string]bool)
		r.joined[c.ID()] = rs
	}
	rs[room] = true
}

// Rooms the rooms a connection currently subscribes to
func (r *RoomRouter) Rooms(c *Connection) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs := r.joined[c.ID()]
	if len(rs) == 0 {
		return nil
	}
	rooms := make([]string, 0, len(rs))
	for room := range rs {
		rooms = append(rooms, room)
	}
	return rooms
}

// DropConnection remove a connection from every room it joined
func (r *RoomRouter) DropConnection(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.joined[c.ID()] {
		set := r.rooms[room]
		delete(set, c.ID())
		if len(set) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(r.joined, c.ID())
}

// BroadcastToRoom deliver an event to every connection in the room,
// optionally excluding one (typically the originator)
func (r *RoomRouter) BroadcastToRoom(room, event string, data interface{}, exclude *Connection) {
	b, err := json.Marshal(domain.WSEvent{Event: event, Data: data})
	if err != nil {
		logger.Log.Error("broadcast marshal err", zap.String("event", event), zap.Error(err))
		return
	}

	r.mu.RLock()
	conns := make([]*Connection, 0, len(r.rooms[room]))
	for _, c := range r.rooms[room] {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		if exclude != nil && c.ID() == exclude.ID() {
			continue
		}
		if err := c.SendRaw(b); err != nil {
			logger.Log.Warn("room broadcast write err",
				zap.String("room", room),
				zap.String("connID", c.ID()),
				zap.Error(err))
		}
	}

	r.mirror(roomChannelPrefix+room, event, data)
}

// BroadcastAll deliver an event to every live connection
func (r *RoomRouter) BroadcastAll(event string, data interface{}, exclude *Connection) {
	b, err := json.Marshal(domain.WSEvent{Event: event, Data: data})
	if err != nil {
		logger.Log.Error("broadcast marshal err", zap.String("event", event), zap.Error(err))
		return
	}

	for _, c := range r.registry.Connections() {
		if exclude != nil && c.ID() == exclude.ID() {
			continue
		}
		if err := c.SendRaw(b); err != nil {
			logger.Log.Warn("global broadcast write err", zap.String("connID", c.ID()), zap.Error(err))
		}
	}

	r.mirror(allChannel, event, data)
}

// SendToUser deliver an event to every connection bound to a user. Silently
// drops when the user has no live bindings here.
func (r *RoomRouter) SendToUser(userID, event string, data interface{}) {
	conns := r.registry.ConnectionsFor(userID)
	if len(conns) == 0 {
		logger.Log.Debug("send to user, no live binding", zap.String("userID", userID), zap.String("event", event))
	}
	for _, c := range conns {
		if err := c.Send(event, data); err != nil {
			logger.Log.Warn("user send write err", zap.String("userID", userID), zap.Error(err))
		}
	}

	r.mirror(userChannelPrefix+userID, event, data)
}

func (r *RoomRouter) mirror(channel, event string, data interface{}) {
	if r.pubsub == nil {
		return
	}
	if err := r.pubsub.Publish(channel, domain.WSEvent{Event: event, Data: data}); err != nil {
		logger.Log.Warn("pubsub mirror err", zap.String("channel", channel), zap.Error(err))
	}
}
