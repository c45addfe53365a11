package repository

import (
	"context"

	"realtime_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoomRepository definition chat room persistence
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *domain.Room) error
	FindByID(ctx context.Context, roomID string) (*domain.Room, error)
	FindByName(ctx context.Context, name string) (*domain.Room, error)
	// FindPublic all non-private rooms, for room:get listings
	FindPublic(ctx context.Context) ([]domain.Room, error)
	// AddMember idempotent membership add ($addToSet)
	AddMember(ctx context.Context, roomID, userID string) error
}

type roomRepository struct {
	coll *mongo.Collection
}

// NewMongoRoomRepository create a RoomRepository
func NewMongoRoomRepository(db *mongo.Database) RoomRepository {
	return &roomRepository{
		coll: db.Collection("rooms"),
	}
}

// CreateRoom create room
func (r *roomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	_, err := r.coll.InsertOne(ctx, room)
	return err
}

// FindByID find room by id
func (r *roomRepository) FindByID(ctx context.Context, roomID string) (*domain.Room, error) {
	var room domain.Room
	err := r.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByName find room by its unique name
func (r *roomRepository) FindByName(ctx context.Context, name string) (*domain.Room, error) {
	var room domain.Room
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindPublic list rooms not marked private
func (r *roomRepository) FindPublic(ctx context.Context) ([]domain.Room, error) {
	cur, err := r.coll.Find(ctx, bson.M{"is_private": false})
	if err != nil {
		return nil, err
	}
	var rooms []domain.Room
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// AddMember add user to the member set, no-op when already present
func (r *roomRepository) AddMember(ctx context.Context, roomID, userID string) error {
	update := bson.M{"$addToSet": bson.M{"members": userID}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
