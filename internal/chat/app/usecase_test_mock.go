package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"realtime_chat_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

// Create mock create user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// FindByID mock find user by id
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByEmail mock find user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByUsernameOrEmail mock duplicate-registration lookup
func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateStatus mock status flip
func (m *MockUserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus, lastSeen time.Time) error {
	args := m.Called(ctx, id, status, lastSeen)
	return args.Error(0)
}

// FindOnline mock online snapshot query
func (m *MockUserRepository) FindOnline(ctx context.Context) ([]domain.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRoomRepository Mock RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

// CreateRoom mock create room
func (m *MockRoomRepository) CreateRoom(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

// FindByID mock find room by id
func (m *MockRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByName mock find room by name
func (m *MockRoomRepository) FindByName(ctx context.Context, name string) (*domain.Room, error) {
	args := m.Called(ctx, name)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindPublic mock list public rooms
func (m *MockRoomRepository) FindPublic(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddMember mock membership add
func (m *MockRoomRepository) AddMember(ctx context.Context, roomID, userID string) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock insert message
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID mock find message by id
func (m *MockMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByRoom mock room history page
func (m *MockMessageRepository) FindByRoom(ctx context.Context, room string, page, limit int64) ([]domain.Message, error) {
	args := m.Called(ctx, room, page, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// AddReadReceipt mock conditional read receipt append
func (m *MockMessageRepository) AddReadReceipt(ctx context.Context, messageID, userID string, readAt time.Time) (bool, error) {
	args := m.Called(ctx, messageID, userID, readAt)
	return args.Bool(0), args.Error(1)
}

// PullReaction mock reaction removal
func (m *MockMessageRepository) PullReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Bool(0), args.Error(1)
}

// PushReaction mock guarded reaction append
func (m *MockMessageRepository) PushReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

// Publish mock publish
func (m *MockEventPublisher) Publish(channel string, message interface{}) error {
	args := m.Called(channel, message)
	return args.Error(0)
}

// MockMessageArchive Mock MessageArchive
type MockMessageArchive struct {
	mock.Mock
}

// WriteMessages mock kafka write
func (m *MockMessageArchive) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

// MockSessionRepository Mock RedisRepository[domain.Session]
type MockSessionRepository struct {
	mock.Mock
}

// Set mock cache a session
func (m *MockSessionRepository) Set(ctx context.Context, key string, value domain.Session, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Get mock read a cached session
func (m *MockSessionRepository) Get(ctx context.Context, key string) (domain.Session, error) {
	args := m.Called(ctx, key)
	if session, ok := args.Get(0).(domain.Session); ok {
		return session, args.Error(1)
	}
	return domain.Session{}, args.Error(1)
}

// Del mock drop a cached session
func (m *MockSessionRepository) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetTTL mock read remaining ttl in seconds
func (m *MockSessionRepository) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// ExtendTTL mock push the expiry out
func (m *MockSessionRepository) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}

// fakeWS captures frames written to a connection so tests can assert on
// delivered events without a live websocket
type fakeWS struct {
	mu     sync.Mutex
	frames [][]byte
}

func (f *fakeWS) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeWS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// events decode every captured frame as a push event
func (f *fakeWS) events() []domain.WSEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.WSEvent, 0, len(f.frames))
	for _, frame := range f.frames {
		var ev domain.WSEvent
		if err := json.Unmarshal(frame, &ev); err == nil {
			out = append(out, ev)
		}
	}
	return out
}

// lastResponse decode the newest captured frame as an ack
func (f *fakeWS) lastResponse() (domain.WSResponse, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.frames) == 0 {
		return domain.WSResponse{}, false
	}
	var resp domain.WSResponse
	if err := json.Unmarshal(f.frames[len(f.frames)-1], &resp); err != nil {
		return domain.WSResponse{}, false
	}
	return resp, true
}
