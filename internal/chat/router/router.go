package router

import (
	"context"

	"realtime_chat_service/internal/chat/app"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes register the chat service routes. Only the upload endpoint
// sits behind the JWT middleware; the websocket endpoint authenticates per
// connection inside the handler and stays open to anonymous clients.
func RegisterRoutes(r *fiber.App, chatWebsocket *app.ChatWebsocketHandler, upload *app.UploadHandler) {
	r.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	r.Post("/api/upload", middlewares.JWTMiddleware(), upload.Upload)

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
