package domain

import "time"

// UserStatus persisted presence status
type UserStatus string

const (
	// UserStatusOnline user has at least one live connection
	UserStatusOnline UserStatus = "online"
	// UserStatusOffline user has no live connection
	UserStatusOffline UserStatus = "offline"
)

// User persisted user record
type User struct {
	ID        string     `bson:"_id" json:"id"`
	Username  string     `bson:"username" json:"username"`
	Email     string     `bson:"email" json:"email,omitempty"`
	Password  string     `bson:"password" json:"-"`
	Avatar    string     `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Status    UserStatus `bson:"status" json:"status"`
	LastSeen  time.Time  `bson:"last_seen" json:"lastSeen"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
}

// Identity the public shape of a user carried in broadcasts and messages
type Identity struct {
	ID       string     `bson:"id" json:"id"`
	Username string     `bson:"username" json:"username"`
	Avatar   string     `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Status   UserStatus `bson:"status,omitempty" json:"status,omitempty"`
}

// Identity strip a user down to its broadcastable fields
func (u *User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Status:   u.Status,
	}
}
