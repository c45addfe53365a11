package app

import (
	"context"
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMessageUseCase_SendText(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	sender := &domain.User{ID: "u1", Username: "alice", Avatar: "a.svg"}

	messages := new(MockMessageRepository)
	messages.On("Insert", ctx, mock.Anything).Return(nil)

	archive := new(MockMessageArchive)
	archive.On("WriteMessages", ctx, mock.Anything).Return(nil)

	uc := NewMessageUseCase(messages, new(MockUserRepository), archive)
	msg, err := uc.Send(ctx, sender, &domain.WSRequest{Event: domain.EventMessageSend, Content: "hello"})

	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, domain.DefaultRoom, msg.Room, "room defaults to the global room")
	assert.Equal(t, domain.MessageTypeText, msg.Type)
	assert.Equal(t, "u1", msg.Sender.ID)
	assert.Nil(t, msg.Recipient)
	assert.Len(t, msg.ReadBy, 1, "sender has read its own message")
	assert.NotNil(t, msg.Reactions)

	messages.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestMessageUseCase_SendDirect(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	sender := &domain.User{ID: "u1", Username: "alice"}

	users := new(MockUserRepository)
	users.On("FindByID", ctx, "u2").Return(&domain.User{ID: "u2", Username: "bob", Avatar: "b.svg"}, nil)

	messages := new(MockMessageRepository)
	messages.On("Insert", ctx, mock.Anything).Return(nil)

	uc := NewMessageUseCase(messages, users, nil)
	msg, err := uc.Send(ctx, sender, &domain.WSRequest{Content: "psst", Recipient: "u2"})

	assert.NoError(t, err)
	assert.NotNil(t, msg.Recipient)
	assert.Equal(t, "bob", msg.Recipient.Username)
}

func TestMessageUseCase_SendUnknownRecipient(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	users := new(MockUserRepository)
	users.On("FindByID", ctx, "ghost").Return(nil, domain.ErrUserNotFound)

	messages := new(MockMessageRepository)
	uc := NewMessageUseCase(messages, users, nil)
	_, err := uc.Send(ctx, &domain.User{ID: "u1"}, &domain.WSRequest{Content: "psst", Recipient: "ghost"})

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	messages.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMessageUseCase_SendValidation(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	sender := &domain.User{ID: "u1", Username: "alice"}

	cases := []struct {
		name string
		req  domain.WSRequest
	}{
		{"empty text", domain.WSRequest{}},
		{"text with file url", domain.WSRequest{Content: "hi", FileURL: "http://x/y.png"}},
		{"image without file url", domain.WSRequest{Type: "image"}},
		{"file without file url", domain.WSRequest{Type: "file"}},
		{"unknown type", domain.WSRequest{Type: "video", Content: "hi"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			messages := new(MockMessageRepository)
			uc := NewMessageUseCase(messages, new(MockUserRepository), nil)

			_, err := uc.Send(ctx, sender, &tc.req)
			assert.Error(t, err)
			messages.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestMessageUseCase_SendImage(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	messages := new(MockMessageRepository)
	messages.On("Insert", ctx, mock.Anything).Return(nil)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	msg, err := uc.Send(ctx, &domain.User{ID: "u1"}, &domain.WSRequest{
		Room:    "random",
		Type:    "image",
		FileURL: "http://blob/pic.png",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.MessageTypeImage, msg.Type)
	assert.Equal(t, "random", msg.Room)
}

func TestMessageUseCase_HistoryDefaultsAndOrder(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	stored := []domain.Message{
		{ID: "m3", Content: "newest"},
		{ID: "m2", Content: "middle"},
		{ID: "m1", Content: "oldest"},
	}

	messages := new(MockMessageRepository)
	messages.On("FindByRoom", ctx, domain.DefaultRoom, int64(1), int64(50)).Return(stored, nil)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	page, err := uc.History(ctx, "", 0, 0)

	assert.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{page[0].ID, page[1].ID, page[2].ID},
		"history should come back oldest first")
	messages.AssertExpectations(t)
}

func TestMessageUseCase_MarkRead(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	messages := new(MockMessageRepository)
	messages.On("AddReadReceipt", ctx, "m1", "u1", mock.Anything).Return(true, nil)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	assert.NoError(t, uc.MarkRead(ctx, "m1", "u1"))
}

func TestMessageUseCase_MarkReadIdempotent(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	messages := new(MockMessageRepository)
	messages.On("AddReadReceipt", ctx, "m1", "u1", mock.Anything).Return(false, nil)
	messages.On("FindByID", ctx, "m1").Return(&domain.Message{ID: "m1"}, nil)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	assert.NoError(t, uc.MarkRead(ctx, "m1", "u1"), "marking an already-read message is not an error")
}

func TestMessageUseCase_MarkReadUnknownMessage(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	messages := new(MockMessageRepository)
	messages.On("AddReadReceipt", ctx, "ghost", "u1", mock.Anything).Return(false, nil)
	messages.On("FindByID", ctx, "ghost").Return(nil, domain.ErrMessageNotFound)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	assert.ErrorIs(t, uc.MarkRead(ctx, "ghost", "u1"), domain.ErrMessageNotFound)
}

func TestMessageUseCase_ToggleReactionAdd(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	after := &domain.Message{ID: "m1", Reactions: []domain.Reaction{{User: "u1", Emoji: "👍"}}}

	messages := new(MockMessageRepository)
	messages.On("PullReaction", ctx, "m1", "u1", "👍").Return(false, nil)
	messages.On("PushReaction", ctx, "m1", "u1", "👍").Return(true, nil)
	messages.On("FindByID", ctx, "m1").Return(after, nil)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	reactions, err := uc.ToggleReaction(ctx, "m1", "u1", "👍")

	assert.NoError(t, err)
	assert.Len(t, reactions, 1)
	messages.AssertExpectations(t)
}

func TestMessageUseCase_ToggleReactionRemove(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	messages := new(MockMessageRepository)
	messages.On("PullReaction", ctx, "m1", "u1", "👍").Return(true, nil)
	messages.On("FindByID", ctx, "m1").Return(&domain.Message{ID: "m1"}, nil)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	reactions, err := uc.ToggleReaction(ctx, "m1", "u1", "👍")

	assert.NoError(t, err)
	assert.Empty(t, reactions)
	assert.NotNil(t, reactions, "reaction list is never nil in the broadcast payload")
	messages.AssertNotCalled(t, "PushReaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMessageUseCase_ToggleReactionUnknownMessage(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	messages := new(MockMessageRepository)
	messages.On("PullReaction", ctx, "ghost", "u1", "👍").Return(false, nil)
	messages.On("PushReaction", ctx, "ghost", "u1", "👍").Return(false, nil)
	messages.On("FindByID", ctx, "ghost").Return(nil, domain.ErrMessageNotFound)

	uc := NewMessageUseCase(messages, new(MockUserRepository), nil)
	_, err := uc.ToggleReaction(ctx, "ghost", "u1", "👍")

	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}

func TestMessageUseCase_ToggleReactionMissingEmoji(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	uc := NewMessageUseCase(new(MockMessageRepository), new(MockUserRepository), nil)
	_, err := uc.ToggleReaction(ctx, "m1", "u1", "")

	assert.Error(t, err)
}
