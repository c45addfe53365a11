package repository

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition message persistence. Read receipts and
// reactions are updated with single conditional document operations so two
// interleaved updates can never lose each other or double-append.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// FindByRoom one page of non-deleted room history, newest first
	FindByRoom(ctx context.Context, room string, page, limit int64) ([]domain.Message, error)
	// AddReadReceipt append a read_by entry unless the user already has one.
	// Returns false when nothing was appended (absent message or already read).
	AddReadReceipt(ctx context.Context, messageID, userID string, readAt time.Time) (bool, error)
	// PullReaction remove the (user, emoji) pair; returns whether it was present
	PullReaction(ctx context.Context, messageID, userID, emoji string) (bool, error)
	// PushReaction add the (user, emoji) pair unless already present
	PushReaction(ctx context.Context, messageID, userID, emoji string) (bool, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

// Insert write one message
func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

// FindByID find message by id
func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByRoom page of room history, newest first (callers reverse for display)
func (r *messageRepository) FindByRoom(ctx context.Context, room string, page, limit int64) ([]domain.Message, error) {
	skip := (page - 1) * limit

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.M{"room": room, "deleted": false}, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// AddReadReceipt single conditional $push keyed on the user not having read yet
func (r *messageRepository) AddReadReceipt(ctx context.Context, messageID, userID string, readAt time.Time) (bool, error) {
	filter := bson.M{
		"_id":          messageID,
		"read_by.user": bson.M{"$ne": userID},
	}
	update := bson.M{"$push": bson.M{"read_by": domain.ReadReceipt{User: userID, ReadAt: readAt}}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// PullReaction atomic removal of a matching (user, emoji) element
func (r *messageRepository) PullReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	filter := bson.M{"_id": messageID}
	update := bson.M{"$pull": bson.M{"reactions": bson.M{"user": userID, "emoji": emoji}}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// PushReaction atomic append guarded against the pair already existing
func (r *messageRepository) PushReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	filter := bson.M{
		"_id": messageID,
		"reactions": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"user":  userID,
			"emoji": emoji,
		}}},
	}
	update := bson.M{"$push": bson.M{"reactions": domain.Reaction{User: userID, Emoji: emoji}}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
