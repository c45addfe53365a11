package app

import (
	"context"
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPresenceTracker_FirstConnection(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	user := &domain.User{ID: "u1", Username: "alice", Avatar: "a.svg"}
	selfWS, observerWS := &fakeWS{}, &fakeWS{}
	self := NewConnection(selfWS, user)
	observer := NewConnection(observerWS, &domain.User{ID: "u2", Username: "bob"})

	first := registry.Register(self)
	registry.Register(observer)

	users := new(MockUserRepository)
	users.On("UpdateStatus", ctx, "u1", domain.UserStatusOnline, mock.Anything).Return(nil)
	users.On("FindOnline", ctx).Return([]domain.Identity{{ID: "u1", Username: "alice"}, {ID: "u2", Username: "bob"}}, nil)

	tracker := NewPresenceTracker(users, router)
	tracker.HandleConnect(ctx, self, first)

	observerEvents := observerWS.events()
	assert.Len(t, observerEvents, 2)
	assert.Equal(t, domain.EventUserOnline, observerEvents[0].Event)
	assert.Equal(t, domain.EventUsersOnline, observerEvents[1].Event)

	// the connecting tab is excluded from its own online announcement but
	// still receives the snapshot
	selfEvents := selfWS.events()
	assert.Len(t, selfEvents, 1)
	assert.Equal(t, domain.EventUsersOnline, selfEvents[0].Event)

	users.AssertExpectations(t)
}

func TestPresenceTracker_AdditionalConnection(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	user := &domain.User{ID: "u1", Username: "alice"}
	tab1WS, tab2WS := &fakeWS{}, &fakeWS{}
	tab1 := NewConnection(tab1WS, user)
	tab2 := NewConnection(tab2WS, user)

	registry.Register(tab1)
	first := registry.Register(tab2)
	assert.False(t, first)

	users := new(MockUserRepository)
	users.On("FindOnline", ctx).Return([]domain.Identity{{ID: "u1", Username: "alice"}}, nil)

	tracker := NewPresenceTracker(users, router)
	tracker.HandleConnect(ctx, tab2, first)

	// no status flip, no announcement, just the snapshot to the new tab
	users.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, tab1WS.count())
	assert.Equal(t, 1, tab2WS.count())
}

func TestPresenceTracker_Disconnect(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	observerWS := &fakeWS{}
	registry.Register(NewConnection(observerWS, &domain.User{ID: "u2", Username: "bob"}))

	users := new(MockUserRepository)
	users.On("UpdateStatus", ctx, "u1", domain.UserStatusOffline, mock.Anything).Return(nil)
	users.On("FindOnline", ctx).Return([]domain.Identity{{ID: "u2", Username: "bob"}}, nil)

	tracker := NewPresenceTracker(users, router)
	tracker.HandleDisconnect(ctx, &domain.User{ID: "u1", Username: "alice"})

	events := observerWS.events()
	assert.Len(t, events, 2)
	assert.Equal(t, domain.EventUserOffline, events[0].Event)
	assert.Equal(t, domain.EventUsersOnline, events[1].Event)

	users.AssertExpectations(t)
}

func TestPresenceTracker_AnonymousConnectionIgnored(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)
	users := new(MockUserRepository)

	tracker := NewPresenceTracker(users, router)
	tracker.HandleConnect(ctx, NewConnection(&fakeWS{}, nil), false)
	tracker.HandleDisconnect(ctx, nil)

	users.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "FindOnline", mock.Anything)
}
