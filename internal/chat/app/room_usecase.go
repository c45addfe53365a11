package app

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomUseCase room creation, listing and joining
type RoomUseCase struct {
	rooms repository.RoomRepository
}

// NewRoomUseCase create RoomUseCase
func NewRoomUseCase(rooms repository.RoomRepository) *RoomUseCase {
	return &RoomUseCase{rooms: rooms}
}

// Create create a room with the creator as first member and admin.
// Room names are unique; a taken name fails with ErrRoomExists.
func (r *RoomUseCase) Create(ctx context.Context, creator *domain.User, name, desc string, isPrivate bool) (*domain.Room, error) {
	if name == "" {
		return nil, errprocess.Set("room name is required")
	}

	if _, err := r.rooms.FindByName(ctx, name); err == nil {
		return nil, domain.ErrRoomExists
	}

	room := &domain.Room{
		ID:        uuid.New().String(),
		Name:      name,
		Desc:      desc,
		Members:   []string{creator.ID},
		Admins:    []string{creator.ID},
		IsPrivate: isPrivate,
		CreatedBy: creator.ID,
		CreatedAt: time.Now(),
	}
	if err := r.rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	logger.Log.Info("room created", zap.String("roomID", room.ID), zap.String("name", name))
	return room, nil
}

// ListPublic all non-private rooms
func (r *RoomUseCase) ListPublic(ctx context.Context) ([]domain.Room, error) {
	return r.rooms.FindPublic(ctx)
}

// Join add a user to a room's member set, idempotent for existing members
func (r *RoomUseCase) Join(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	room, err := r.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := r.rooms.AddMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	if !room.HasMember(userID) {
		room.Members = append(room.Members, userID)
	}
	return room, nil
}
