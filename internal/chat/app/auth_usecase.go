package app

import (
	"context"
	"fmt"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/encrypt"
	errprocess "realtime_chat_service/pkg/err"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthUseCase registration, login and token verification. Sessions are
// cached in redis keyed by token so a restart of this process does not
// invalidate issued tokens before their JWT expiry.
type AuthUseCase struct {
	users      repository.UserRepository
	sessions   database.RedisRepository[domain.Session]
	sessionTTL time.Duration
	issuer     string
}

// NewAuthUseCase create AuthUseCase, sessions may be nil
func NewAuthUseCase(users repository.UserRepository, sessions database.RedisRepository[domain.Session], sessionTTL time.Duration, issuer string) *AuthUseCase {
	return &AuthUseCase{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		issuer:     issuer,
	}
}

// Register create a user and issue a token for it
func (a *AuthUseCase) Register(ctx context.Context, username, email, password string) (string, *domain.User, error) {
	if username == "" || email == "" || password == "" {
		return "", nil, errprocess.Set("username, email and password are required")
	}

	if _, err := a.users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return "", nil, domain.ErrUserExists
	}

	hashed, err := encrypt.HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		Password:  hashed,
		Avatar:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", username),
		Status:    domain.UserStatusOffline,
		LastSeen:  now,
		CreatedAt: now,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	tok, err := token.GenerateJWTFunc(user.ID, string(token.RoleUser), a.issuer)
	if err != nil {
		return "", nil, err
	}
	a.cacheSession(ctx, tok, user.ID)

	logger.Log.Info("user registered", zap.String("userID", user.ID), zap.String("username", username))
	return tok, user, nil
}

// Login verify credentials, flip the user online and issue a token
func (a *AuthUseCase) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, errprocess.Set("email and password are required")
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := encrypt.CheckPassword(user.Password, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	if err := a.users.UpdateStatus(ctx, user.ID, domain.UserStatusOnline, now); err != nil {
		logger.Log.Error("login status update err", zap.String("userID", user.ID), zap.Error(err))
	}
	user.Status = domain.UserStatusOnline
	user.LastSeen = now

	tok, err := token.GenerateJWTFunc(user.ID, string(token.RoleUser), a.issuer)
	if err != nil {
		return "", nil, err
	}
	a.cacheSession(ctx, tok, user.ID)

	logger.Log.Info("user login", zap.String("userID", user.ID))
	return tok, user, nil
}

// Verify resolve a raw token into its user, for the websocket handshake.
// A cached session is checked first: an expired one rejects the token, a
// live one gets its TTL extended. A cache miss falls through to mongo so a
// redis flush does not invalidate tokens before their JWT expiry.
func (a *AuthUseCase) Verify(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := token.ParseJWTFunc(tokenStr)
	if err != nil {
		return nil, err
	}

	if a.sessions != nil {
		if session, err := a.sessions.Get(ctx, tokenStr); err == nil {
			if session.IsExpired() {
				return nil, domain.ErrSessionExpired
			}
			if err := a.sessions.ExtendTTL(ctx, tokenStr, a.sessionTTL); err != nil {
				logger.Log.Warn("session extend err", zap.String("userID", claims.UserID), zap.Error(err))
			}
		}
	}

	return a.users.FindByID(ctx, claims.UserID)
}

func (a *AuthUseCase) cacheSession(ctx context.Context, tok, userID string) {
	if a.sessions == nil {
		return
	}
	now := time.Now()
	session := domain.Session{
		Token:        tok,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(a.sessionTTL),
	}
	if err := a.sessions.Set(ctx, tok, session, a.sessionTTL); err != nil {
		logger.Log.Warn("session cache err", zap.String("userID", userID), zap.Error(err))
	}
}
