package domain

import (
	"time"

	"realtime_chat_service/pkg"
)

// DefaultRoom every authenticated connection joins this room on connect
const DefaultRoom = "global"

// Room persisted chat room. A private room is not listed by room:get but can
// still be joined by id; persisted membership only grows (no leave operation).
type Room struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Desc      string    `bson:"description,omitempty" json:"description,omitempty"`
	Members   []string  `bson:"members" json:"members"`
	Admins    []string  `bson:"admins" json:"admins"`
	IsPrivate bool      `bson:"is_private" json:"isPrivate"`
	CreatedBy string    `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// HasMember check user already in member list
func (r *Room) HasMember(userID string) bool {
	return pkg.Contains(r.Members, userID)
}
