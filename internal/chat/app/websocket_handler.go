package app

import (
	"context"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler owns the lifecycle of one websocket connection:
// handshake authentication, registry/presence bookkeeping, the read loop
// and the symmetric teardown.
type ChatWebsocketHandler struct {
	dispatcher  *Dispatcher
	registry    *SessionRegistry
	router      *RoomRouter
	presence    *PresenceTracker
	typing      *TypingTracker
	auth        *AuthUseCase
	defaultRoom string
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	dispatcher *Dispatcher,
	registry *SessionRegistry,
	router *RoomRouter,
	presence *PresenceTracker,
	typing *TypingTracker,
	auth *AuthUseCase,
	defaultRoom string,
) *ChatWebsocketHandler {
	if defaultRoom == "" {
		defaultRoom = domain.DefaultRoom
	}
	return &ChatWebsocketHandler{
		dispatcher:  dispatcher,
		registry:    registry,
		router:      router,
		presence:    presence,
		typing:      typing,
		auth:        auth,
		defaultRoom: defaultRoom,
	}
}

// HandleConnection entry point of a websocket connection. The handshake is
// lenient: a missing or invalid token leaves the connection anonymous
// instead of closing it, so clients can still register and browse public
// reads before logging in.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	user := h.authenticate(ctx, conn)
	c := NewConnection(conn, user)
	first := h.registry.Register(c)

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		cancel()
		h.teardown(c)
		logger.Log.Info("websocket close", zap.String("connID", c.ID()), zap.String("userID", c.UserID()))
		conn.Close()
	}()

	// client close is surfaced as a ReadMessage error by fiber, the close
	// handler only exists to log the frame itself
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("connID", c.ID()))
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	if user != nil {
		h.router.JoinRoom(c, h.defaultRoom)
		h.presence.HandleConnect(ctx, c, first)
	}

	// keepalive ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping message")); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}

		if mt != websocket.TextMessage {
			continue
		}
		if resp := h.dispatcher.Dispatch(ctx, c, message); resp != nil {
			c.WriteResponse(resp)
		}
	}
}

// teardown release everything a connection held. Typing state goes first so
// the forced typing:user stop still reaches the rooms the connection was in,
// then room subscriptions, then the registry binding; the presence flip only
// fires when this was the identity's last connection.
func (h *ChatWebsocketHandler) teardown(c *Connection) {
	h.typing.StopAll(c)
	h.router.DropConnection(c)
	if last := h.registry.Deregister(c); last != nil {
		h.presence.HandleDisconnect(context.Background(), last)
	}
}

// authenticate resolve the handshake token from query or cookie; failures
// log and fall through to anonymous
func (h *ChatWebsocketHandler) authenticate(ctx context.Context, conn *websocket.Conn) *domain.User {
	tok := conn.Query(middlewares.QueryToken)
	if tok == "" {
		tok = conn.Cookies(middlewares.CookieToken)
	}
	if tok == "" {
		return nil
	}

	user, err := h.auth.Verify(ctx, tok)
	if err != nil {
		logger.Log.Warn("websocket handshake token rejected", zap.Error(err))
		return nil
	}
	logger.Log.Info("websocket authenticated", zap.String("userID", user.ID), zap.String("username", user.Username))
	return user
}
