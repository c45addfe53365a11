package domain

import "time"

// MessageType message content type
type MessageType string

const (
	// MessageTypeText plain text message
	MessageTypeText MessageType = "text"
	// MessageTypeImage image message, FileURL points at the blob store
	MessageTypeImage MessageType = "image"
	// MessageTypeFile generic file message, FileURL points at the blob store
	MessageTypeFile MessageType = "file"
)

// ReadReceipt one read_by entry, at most one per user per message
type ReadReceipt struct {
	User   string    `bson:"user" json:"user"`
	ReadAt time.Time `bson:"read_at" json:"readAt"`
}

// Reaction one (user, emoji) pair; the set is toggled, never duplicated
type Reaction struct {
	User  string `bson:"user" json:"user"`
	Emoji string `bson:"emoji" json:"emoji"`
}

// Message persisted chat message. Sender and Recipient are denormalized
// identity snapshots so history reads need no join against the user
// collection. Immutable after delivery except read_by (append once per user)
// and reactions (toggle per user+emoji), both updated with single atomic
// document operations.
type Message struct {
	ID        string        `bson:"_id" json:"id"`
	Sender    Identity      `bson:"sender" json:"sender"`
	Recipient *Identity     `bson:"recipient,omitempty" json:"recipient,omitempty"`
	Room      string        `bson:"room" json:"room"`
	Content   string        `bson:"content" json:"content"`
	Type      MessageType   `bson:"type" json:"type"`
	FileURL   string        `bson:"file_url,omitempty" json:"fileUrl,omitempty"`
	ReadBy    []ReadReceipt `bson:"read_by" json:"readBy"`
	Reactions []Reaction    `bson:"reactions" json:"reactions"`
	Edited    bool          `bson:"edited" json:"edited"`
	Deleted   bool          `bson:"deleted" json:"deleted"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}
