package app

import (
	"context"
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRoomUseCase_Create(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	creator := &domain.User{ID: "u1", Username: "alice"}

	rooms := new(MockRoomRepository)
	rooms.On("FindByName", ctx, "general").Return(nil, domain.ErrRoomNotFound)
	rooms.On("CreateRoom", ctx, mock.Anything).Return(nil)

	uc := NewRoomUseCase(rooms)
	room, err := uc.Create(ctx, creator, "general", "general talk", false)

	assert.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, []string{"u1"}, room.Members)
	assert.Equal(t, []string{"u1"}, room.Admins)
	assert.Equal(t, "u1", room.CreatedBy)

	rooms.AssertExpectations(t)
}

func TestRoomUseCase_CreateDuplicateName(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	rooms := new(MockRoomRepository)
	rooms.On("FindByName", ctx, "general").Return(&domain.Room{ID: "r1", Name: "general"}, nil)

	uc := NewRoomUseCase(rooms)
	_, err := uc.Create(ctx, &domain.User{ID: "u1"}, "general", "", false)

	assert.ErrorIs(t, err, domain.ErrRoomExists)
	rooms.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
}

func TestRoomUseCase_CreateEmptyName(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	uc := NewRoomUseCase(new(MockRoomRepository))
	_, err := uc.Create(ctx, &domain.User{ID: "u1"}, "", "", false)

	assert.Error(t, err)
}

func TestRoomUseCase_Join(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	rooms := new(MockRoomRepository)
	rooms.On("FindByID", ctx, "r1").Return(&domain.Room{ID: "r1", Name: "general", Members: []string{"u1"}}, nil)
	rooms.On("AddMember", ctx, "r1", "u2").Return(nil)

	uc := NewRoomUseCase(rooms)
	room, err := uc.Join(ctx, "r1", "u2")

	assert.NoError(t, err)
	assert.Contains(t, room.Members, "u2")
	rooms.AssertExpectations(t)
}

func TestRoomUseCase_JoinIdempotent(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	rooms := new(MockRoomRepository)
	rooms.On("FindByID", ctx, "r1").Return(&domain.Room{ID: "r1", Name: "general", Members: []string{"u1"}}, nil)
	rooms.On("AddMember", ctx, "r1", "u1").Return(nil)

	uc := NewRoomUseCase(rooms)
	room, err := uc.Join(ctx, "r1", "u1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"u1"}, room.Members, "rejoin must not duplicate membership")
}

func TestRoomUseCase_JoinUnknownRoom(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	rooms := new(MockRoomRepository)
	rooms.On("FindByID", ctx, "ghost").Return(nil, domain.ErrRoomNotFound)

	uc := NewRoomUseCase(rooms)
	_, err := uc.Join(ctx, "ghost", "u1")

	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRoomUseCase_ListPublic(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	rooms := new(MockRoomRepository)
	rooms.On("FindPublic", ctx).Return([]domain.Room{{ID: "r1", Name: "general"}}, nil)

	uc := NewRoomUseCase(rooms)
	list, err := uc.ListPublic(ctx)

	assert.NoError(t, err)
	assert.Len(t, list, 1)
}
