package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
)

// MessageArchive the slice of kafka.Writer message sending depends on
type MessageArchive interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageUseCase message sending, history, read receipts and reactions.
// Sender and recipient identity are denormalized into each message so
// history reads need no joins.
type MessageUseCase struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	archive  MessageArchive
}

// NewMessageUseCase create MessageUseCase, archive may be nil
func NewMessageUseCase(messages repository.MessageRepository, users repository.UserRepository, archive MessageArchive) *MessageUseCase {
	return &MessageUseCase{
		messages: messages,
		users:    users,
		archive:  archive,
	}
}

// Send validate and persist one message. Text messages carry content and no
// file url; image and file messages must carry a file url.
func (m *MessageUseCase) Send(ctx context.Context, sender *domain.User, req *domain.WSRequest) (*domain.Message, error) {
	room := req.Room
	if room == "" {
		room = domain.DefaultRoom
	}
	mtype := domain.MessageType(req.Type)
	if mtype == "" {
		mtype = domain.MessageTypeText
	}

	switch mtype {
	case domain.MessageTypeText:
		if req.Content == "" {
			return nil, errprocess.Set("message content is required")
		}
		if req.FileURL != "" {
			return nil, errprocess.Set("fileUrl is not allowed for text messages")
		}
	case domain.MessageTypeImage, domain.MessageTypeFile:
		if req.FileURL == "" {
			return nil, fmt.Errorf("fileUrl is required for %s messages", mtype)
		}
	default:
		return nil, fmt.Errorf("unknown message type: %s", req.Type)
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		Sender:    sender.Identity(),
		Room:      room,
		Content:   req.Content,
		Type:      mtype,
		FileURL:   req.FileURL,
		ReadBy:    []domain.ReadReceipt{{User: sender.ID, ReadAt: time.Now()}},
		Reactions: []domain.Reaction{},
		CreatedAt: time.Now(),
	}

	if req.Recipient != "" {
		ru, err := m.users.FindByID(ctx, req.Recipient)
		if err != nil {
			return nil, err
		}
		rid := ru.Identity()
		msg.Recipient = &rid
	}

	if err := m.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	m.archiveMessage(ctx, msg)
	return msg, nil
}

// History one page of room history in ascending time order. Pages count from
// 1 and walk backwards through time, so page 1 holds the newest messages.
func (m *MessageUseCase) History(ctx context.Context, room string, page, limit int64) ([]domain.Message, error) {
	if room == "" {
		room = domain.DefaultRoom
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}

	messages, err := m.messages.FindByRoom(ctx, room, page, limit)
	if err != nil {
		return nil, err
	}

	// storage returns newest first, display order is oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead record that a user read a message, idempotent per user
func (m *MessageUseCase) MarkRead(ctx context.Context, messageID, userID string) error {
	if messageID == "" {
		return errprocess.Set("messageId is required")
	}

	added, err := m.messages.AddReadReceipt(ctx, messageID, userID, time.Now())
	if err != nil {
		return err
	}
	if !added {
		// either already read (fine) or the message does not exist
		if _, err := m.messages.FindByID(ctx, messageID); err != nil {
			return err
		}
	}
	return nil
}

// ToggleReaction flip a (user, emoji) reaction on a message and return the
// full reaction list after the flip
func (m *MessageUseCase) ToggleReaction(ctx context.Context, messageID, userID, emoji string) ([]domain.Reaction, error) {
	if messageID == "" || emoji == "" {
		return nil, errprocess.Set("messageId and emoji are required")
	}

	removed, err := m.messages.PullReaction(ctx, messageID, userID, emoji)
	if err != nil {
		return nil, err
	}
	if !removed {
		added, err := m.messages.PushReaction(ctx, messageID, userID, emoji)
		if err != nil {
			return nil, err
		}
		if !added {
			// push matched nothing, either absent message or a concurrent
			// toggle already added the pair
			if _, err := m.messages.FindByID(ctx, messageID); err != nil {
				return nil, err
			}
		}
	}

	msg, err := m.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Reactions == nil {
		return []domain.Reaction{}, nil
	}
	return msg.Reactions, nil
}

func (m *MessageUseCase) archiveMessage(ctx context.Context, msg *domain.Message) {
	if m.archive == nil {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Error("archive marshal err", zap.String("messageID", msg.ID), zap.Error(err))
		return
	}
	if err := m.archive.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Room),
		Value: b,
	}); err != nil {
		logger.Log.Warn("archive write err", zap.String("messageID", msg.ID), zap.Error(err))
	}
}
