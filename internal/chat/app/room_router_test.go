package app

import (
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRoomRouter_BroadcastToRoom(t *testing.T) {
	logger.SetNewNop()
	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	senderWS, memberWS, outsiderWS := &fakeWS{}, &fakeWS{}, &fakeWS{}
	sender := NewConnection(senderWS, &domain.User{ID: "u1", Username: "alice"})
	member := NewConnection(memberWS, &domain.User{ID: "u2", Username: "bob"})
	outsider := NewConnection(outsiderWS, &domain.User{ID: "u3", Username: "carol"})

	registry.Register(sender)
	registry.Register(member)
	registry.Register(outsider)

	router.JoinRoom(sender, "global")
	router.JoinRoom(member, "global")
	router.JoinRoom(outsider, "random")

	router.BroadcastToRoom("global", domain.EventTypingUser, map[string]interface{}{"userId": "u1"}, sender)

	assert.Equal(t, 0, senderWS.count(), "excluded originator should receive nothing")
	assert.Equal(t, 1, memberWS.count())
	assert.Equal(t, 0, outsiderWS.count(), "other room should receive nothing")

	events := memberWS.events()
	assert.Equal(t, domain.EventTypingUser, events[0].Event)
}

func TestRoomRouter_JoinRoomIdempotent(t *testing.T) {
	logger.SetNewNop()
	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	ws := &fakeWS{}
	c := NewConnection(ws, &domain.User{ID: "u1"})
	registry.Register(c)

	router.JoinRoom(c, "global")
	router.JoinRoom(c, "global")

	router.BroadcastToRoom("global", domain.EventMessageNew, nil, nil)
	assert.Equal(t, 1, ws.count(), "double join must not duplicate delivery")
	assert.Equal(t, []string{"global"}, router.Rooms(c))
}

func TestRoomRouter_BroadcastAll(t *testing.T) {
	logger.SetNewNop()
	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	authedWS, anonWS := &fakeWS{}, &fakeWS{}
	authed := NewConnection(authedWS, &domain.User{ID: "u1"})
	anon := NewConnection(anonWS, nil)

	registry.Register(authed)
	registry.Register(anon)

	router.BroadcastAll(domain.EventRoomCreated, map[string]interface{}{"name": "general"}, nil)

	assert.Equal(t, 1, authedWS.count())
	assert.Equal(t, 1, anonWS.count(), "global broadcasts reach anonymous connections too")
}

func TestRoomRouter_SendToUser(t *testing.T) {
	logger.SetNewNop()
	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	user := &domain.User{ID: "u1", Username: "alice"}
	tab1WS, tab2WS, otherWS := &fakeWS{}, &fakeWS{}, &fakeWS{}

	registry.Register(NewConnection(tab1WS, user))
	registry.Register(NewConnection(tab2WS, user))
	registry.Register(NewConnection(otherWS, &domain.User{ID: "u2"}))

	router.SendToUser("u1", domain.EventMessageNew, map[string]interface{}{"content": "hi"})

	assert.Equal(t, 1, tab1WS.count(), "every binding of the user should receive the event")
	assert.Equal(t, 1, tab2WS.count())
	assert.Equal(t, 0, otherWS.count())
}

func TestRoomRouter_DropConnection(t *testing.T) {
	logger.SetNewNop()
	registry := NewSessionRegistry()
	router := NewRoomRouter(registry, nil)

	ws := &fakeWS{}
	c := NewConnection(ws, &domain.User{ID: "u1"})
	registry.Register(c)
	router.JoinRoom(c, "global")

	router.DropConnection(c)

	router.BroadcastToRoom("global", domain.EventMessageNew, nil, nil)
	assert.Equal(t, 0, ws.count())
	assert.Nil(t, router.Rooms(c))
}

func TestRoomRouter_PubSubMirror(t *testing.T) {
	logger.SetNewNop()
	registry := NewSessionRegistry()

	pub := new(MockEventPublisher)
	pub.On("Publish", "chat:events:global", mock.Anything).Return(nil)

	router := NewRoomRouter(registry, pub)
	router.BroadcastToRoom("global", domain.EventMessageNew, nil, nil)

	pub.AssertExpectations(t)
}
