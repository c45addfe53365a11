package app

import (
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func handlerTestSetup(users *MockUserRepository) (*ChatWebsocketHandler, *SessionRegistry, *RoomRouter, *TypingTracker) {
	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)
	typing := NewTypingTracker(router)
	presence := NewPresenceTracker(users, router)
	h := NewChatWebsocketHandler(nil, registry, router, presence, typing, nil, "")
	return h, registry, router, typing
}

func TestChatWebsocketHandler_TeardownWhileTyping(t *testing.T) {
	logger.SetNewNop()

	users := new(MockUserRepository)
	users.On("UpdateStatus", mock.Anything, "u1", domain.UserStatusOffline, mock.Anything).Return(nil)
	users.On("FindOnline", mock.Anything).Return([]domain.Identity{}, nil)

	h, registry, router, typing := handlerTestSetup(users)

	typerWS := &fakeWS{}
	typer := NewConnection(typerWS, &domain.User{ID: "u1", Username: "alice"})
	observerWS := &fakeWS{}
	observer := NewConnection(observerWS, &domain.User{ID: "u2", Username: "bob"})

	registry.Register(typer)
	registry.Register(observer)
	router.JoinRoom(typer, "global")
	router.JoinRoom(observer, "global")

	typing.Start("global", typer)

	h.teardown(typer)

	// observer saw the typing start, then the forced stop, the offline
	// announcement and the refreshed snapshot
	events := observerWS.events()
	assert.Len(t, events, 4)
	assert.Equal(t, domain.EventTypingUser, events[1].Event)
	assert.False(t, typingFlag(events[1]))
	assert.Equal(t, domain.EventUserOffline, events[2].Event)
	assert.Equal(t, domain.EventUsersOnline, events[3].Event)
	assert.Equal(t, 0, typerWS.count(), "dropped connection must not be written to")

	typing.mu.Lock()
	remaining := len(typing.entries)
	typing.mu.Unlock()
	assert.Zero(t, remaining)

	users.AssertExpectations(t)
}

func TestChatWebsocketHandler_TeardownKeepsOtherTabOnline(t *testing.T) {
	logger.SetNewNop()

	users := new(MockUserRepository)
	h, registry, router, _ := handlerTestSetup(users)

	alice := &domain.User{ID: "u1", Username: "alice"}
	tab1 := NewConnection(&fakeWS{}, alice)
	tab2 := NewConnection(&fakeWS{}, alice)
	observerWS := &fakeWS{}
	observer := NewConnection(observerWS, &domain.User{ID: "u2", Username: "bob"})

	registry.Register(tab1)
	registry.Register(tab2)
	registry.Register(observer)
	router.JoinRoom(tab1, "global")
	router.JoinRoom(observer, "global")

	h.teardown(tab1)

	for _, ev := range observerWS.events() {
		assert.NotEqual(t, domain.EventUserOffline, ev.Event, "identity still has a live connection")
	}
	users.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
