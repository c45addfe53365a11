package app

import (
	"context"
	"encoding/json"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// HandlerFunc handles one inbound event; a nil response means no ack frame
type HandlerFunc func(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse

type handlerEntry struct {
	requireAuth bool
	// silent events never ack, not even on an auth failure
	silent bool
	handle HandlerFunc
}

// Dispatcher routes inbound frames to event handlers through a static table.
// Auth gating lives here so individual handlers can assume c.User() is set
// when their entry requires it; message:get and room:get stay open to
// anonymous connections on purpose, history and the room directory are
// public reads.
type Dispatcher struct {
	handlers map[string]handlerEntry

	auth     *AuthUseCase
	messages *MessageUseCase
	rooms    *RoomUseCase
	router   *RoomRouter
	typing   *TypingTracker

	defaultRoom string
}

// NewDispatcher create Dispatcher with the full event table
func NewDispatcher(auth *AuthUseCase, messages *MessageUseCase, rooms *RoomUseCase, router *RoomRouter, typing *TypingTracker, defaultRoom string) *Dispatcher {
	if defaultRoom == "" {
		defaultRoom = domain.DefaultRoom
	}
	d := &Dispatcher{
		auth:        auth,
		messages:    messages,
		rooms:       rooms,
		router:      router,
		typing:      typing,
		defaultRoom: defaultRoom,
	}
	d.handlers = map[string]handlerEntry{
		domain.EventAuthRegister:    {handle: d.handleAuthRegister},
		domain.EventAuthLogin:       {handle: d.handleAuthLogin},
		domain.EventMessageSend:     {requireAuth: true, handle: d.handleMessageSend},
		domain.EventMessageGet:      {handle: d.handleMessageGet},
		domain.EventMessageRead:     {requireAuth: true, handle: d.handleMessageRead},
		domain.EventMessageReaction: {requireAuth: true, handle: d.handleMessageReaction},
		domain.EventTypingStart:     {requireAuth: true, silent: true, handle: d.handleTypingStart},
		domain.EventTypingStop:      {requireAuth: true, silent: true, handle: d.handleTypingStop},
		domain.EventRoomCreate:      {requireAuth: true, handle: d.handleRoomCreate},
		domain.EventRoomGet:         {handle: d.handleRoomGet},
		domain.EventRoomJoin:        {requireAuth: true, handle: d.handleRoomJoin},
	}
	return d
}

// Dispatch decode one raw frame and run its handler. The returned ack is nil
// for silent events; the caller writes non-nil acks back on the connection.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Connection, raw []byte) *domain.WSResponse {
	var req domain.WSRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		logger.Log.Warn("dispatch decode err", zap.String("connID", c.ID()), zap.Error(err))
		return &domain.WSResponse{Event: "error", Success: false, Error: "invalid message format"}
	}

	entry, ok := d.handlers[req.Event]
	if !ok {
		logger.Log.Warn("dispatch unknown event", zap.String("event", req.Event), zap.String("connID", c.ID()))
		return failAck(req.Event, "unknown event: "+req.Event)
	}

	if entry.requireAuth && c.User() == nil {
		if entry.silent {
			return nil
		}
		return failAck(req.Event, domain.ErrAuthRequired.Error())
	}

	return entry.handle(ctx, c, &req)
}

func okAck(event string, payload map[string]interface{}) *domain.WSResponse {
	return &domain.WSResponse{Event: event, Success: true, Payload: payload}
}

func failAck(event, msg string) *domain.WSResponse {
	return &domain.WSResponse{Event: event, Success: false, Error: msg}
}

func publicUser(u *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"avatar":   u.Avatar,
		"status":   u.Status,
	}
}

func (d *Dispatcher) handleAuthRegister(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	tok, user, err := d.auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return failAck(req.Event, err.Error())
	}
	return okAck(req.Event, map[string]interface{}{
		"token": tok,
		"user":  publicUser(user),
	})
}

func (d *Dispatcher) handleAuthLogin(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	tok, user, err := d.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return failAck(req.Event, err.Error())
	}
	return okAck(req.Event, map[string]interface{}{
		"token": tok,
		"user":  publicUser(user),
	})
}

func (d *Dispatcher) handleMessageSend(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	msg, err := d.messages.Send(ctx, c.User(), req)
	if err != nil {
		return failAck(req.Event, err.Error())
	}

	if msg.Recipient != nil {
		// direct message, deliver to both ends only
		d.router.SendToUser(msg.Recipient.ID, domain.EventMessageNew, msg)
		if err := c.Send(domain.EventMessageNew, msg); err != nil {
			logger.Log.Warn("direct message echo err", zap.String("connID", c.ID()), zap.Error(err))
		}
	} else {
		d.router.BroadcastToRoom(msg.Room, domain.EventMessageNew, msg, nil)
	}

	return okAck(req.Event, map[string]interface{}{"message": msg})
}

func (d *Dispatcher) handleMessageGet(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	messages, err := d.messages.History(ctx, req.Room, req.Page, req.Limit)
	if err != nil {
		return failAck(req.Event, err.Error())
	}
	return okAck(req.Event, map[string]interface{}{"messages": messages})
}

func (d *Dispatcher) handleMessageRead(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	if err := d.messages.MarkRead(ctx, req.MessageID, c.UserID()); err != nil {
		return failAck(req.Event, err.Error())
	}

	room := req.Room
	if room == "" {
		room = d.defaultRoom
	}
	d.router.BroadcastToRoom(room, domain.EventMessageReadMark, map[string]interface{}{
		"messageId": req.MessageID,
		"userId":    c.UserID(),
	}, nil)

	return okAck(req.Event, nil)
}

func (d *Dispatcher) handleMessageReaction(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	reactions, err := d.messages.ToggleReaction(ctx, req.MessageID, c.UserID(), req.Emoji)
	if err != nil {
		return failAck(req.Event, err.Error())
	}

	room := req.Room
	if room == "" {
		room = d.defaultRoom
	}
	d.router.BroadcastToRoom(room, domain.EventMessageReactionUpdate, map[string]interface{}{
		"messageId": req.MessageID,
		"reactions": reactions,
	}, nil)

	return okAck(req.Event, map[string]interface{}{
		"messageId": req.MessageID,
		"reactions": reactions,
	})
}

func (d *Dispatcher) handleTypingStart(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	room := req.Room
	if room == "" {
		room = d.defaultRoom
	}
	d.typing.Start(room, c)
	return nil
}

func (d *Dispatcher) handleTypingStop(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	room := req.Room
	if room == "" {
		room = d.defaultRoom
	}
	d.typing.Stop(room, c)
	return nil
}

func (d *Dispatcher) handleRoomCreate(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	room, err := d.rooms.Create(ctx, c.User(), req.Name, req.Desc, req.IsPrivate)
	if err != nil {
		return failAck(req.Event, err.Error())
	}

	d.router.JoinRoom(c, room.Name)
	d.router.BroadcastAll(domain.EventRoomCreated, room, nil)

	return okAck(req.Event, map[string]interface{}{"room": room})
}

func (d *Dispatcher) handleRoomGet(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	rooms, err := d.rooms.ListPublic(ctx)
	if err != nil {
		return failAck(req.Event, err.Error())
	}
	return okAck(req.Event, map[string]interface{}{"rooms": rooms})
}

func (d *Dispatcher) handleRoomJoin(ctx context.Context, c *Connection, req *domain.WSRequest) *domain.WSResponse {
	room, err := d.rooms.Join(ctx, req.RoomID, c.UserID())
	if err != nil {
		return failAck(req.Event, err.Error())
	}

	d.router.JoinRoom(c, room.Name)

	user := c.User()
	d.router.BroadcastToRoom(room.Name, domain.EventRoomUserJoined, map[string]interface{}{
		"userId":   user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
		"room":     room.Name,
	}, nil)

	return okAck(req.Event, map[string]interface{}{"room": room})
}
