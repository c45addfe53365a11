package app

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// PresenceTracker turns connection register/deregister into online/offline
// status flips. Flips are monotone per identity: the online transition fires
// only on the first binding, the offline one only after the last binding is
// gone, so multi-tab churn in between emits nothing.
type PresenceTracker struct {
	users  repository.UserRepository
	router *RoomRouter
}

// NewPresenceTracker create PresenceTracker
func NewPresenceTracker(users repository.UserRepository, router *RoomRouter) *PresenceTracker {
	return &PresenceTracker{
		users:  users,
		router: router,
	}
}

// HandleConnect run the online transition for a freshly registered
// authenticated connection. first comes from SessionRegistry.Register.
// Additional bindings only receive the current online snapshot themselves.
func (p *PresenceTracker) HandleConnect(ctx context.Context, c *Connection, first bool) {
	user := c.User()
	if user == nil {
		return
	}

	if !first {
		p.sendSnapshot(ctx, c)
		return
	}

	if err := p.users.UpdateStatus(ctx, user.ID, domain.UserStatusOnline, time.Now()); err != nil {
		logger.Log.Error("presence online update err", zap.String("userID", user.ID), zap.Error(err))
	}
	user.Status = domain.UserStatusOnline

	p.router.BroadcastAll(domain.EventUserOnline, map[string]interface{}{
		"userId":   user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
	}, c)

	p.broadcastSnapshot(ctx)
}

// HandleDisconnect run the offline transition for an identity whose last
// connection just dropped. user comes from SessionRegistry.Deregister.
func (p *PresenceTracker) HandleDisconnect(ctx context.Context, user *domain.User) {
	if user == nil {
		return
	}

	now := time.Now()
	if err := p.users.UpdateStatus(ctx, user.ID, domain.UserStatusOffline, now); err != nil {
		logger.Log.Error("presence offline update err", zap.String("userID", user.ID), zap.Error(err))
	}

	p.router.BroadcastAll(domain.EventUserOffline, map[string]interface{}{
		"userId":   user.ID,
		"username": user.Username,
	}, nil)

	p.broadcastSnapshot(ctx)
}

func (p *PresenceTracker) broadcastSnapshot(ctx context.Context) {
	online, err := p.users.FindOnline(ctx)
	if err != nil {
		logger.Log.Error("presence snapshot err", zap.Error(err))
		return
	}
	p.router.BroadcastAll(domain.EventUsersOnline, online, nil)
}

func (p *PresenceTracker) sendSnapshot(ctx context.Context, c *Connection) {
	online, err := p.users.FindOnline(ctx)
	if err != nil {
		logger.Log.Error("presence snapshot err", zap.Error(err))
		return
	}
	if err := c.Send(domain.EventUsersOnline, online); err != nil {
		logger.Log.Warn("presence snapshot write err", zap.String("connID", c.ID()), zap.Error(err))
	}
}
