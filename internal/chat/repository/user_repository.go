package repository

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository definition user persistence
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsernameOrEmail duplicate-registration lookup
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus, lastSeen time.Time) error
	// FindOnline all identities whose persisted status is online
	FindOnline(ctx context.Context) ([]domain.Identity, error)
}

type userRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository create a UserRepository
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		coll: db.Collection("users"),
	}
}

// Create insert user
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return err
}

// FindByID find user by id
func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail find user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsernameOrEmail find a user matching either field
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	var user domain.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateStatus flip persisted presence status and last seen
func (r *userRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus, lastSeen time.Time) error {
	update := bson.M{"$set": bson.M{"status": status, "last_seen": lastSeen}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// FindOnline list identities with persisted status online
func (r *userRepository) FindOnline(ctx context.Context) ([]domain.Identity, error) {
	cur, err := r.coll.Find(ctx, bson.M{"status": domain.UserStatusOnline})
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}

	identities := make([]domain.Identity, 0, len(users))
	for i := range users {
		identities = append(identities, users[i].Identity())
	}
	return identities, nil
}
