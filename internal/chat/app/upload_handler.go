package app

import (
	"path/filepath"
	"time"

	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// presignedURLExpiry lifetime of download links handed back to clients
const presignedURLExpiry = 24 * time.Hour

// UploadHandler multipart file upload backing image and file messages.
// Files land in object storage and the client gets a presigned download url
// to embed as the message fileUrl.
type UploadHandler struct {
	store *database.MinIOClient
}

// NewUploadHandler create UploadHandler
func NewUploadHandler(store *database.MinIOClient) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload POST /api/upload, multipart field "file"
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No file uploaded",
		})
	}

	f, err := fh.Open()
	if err != nil {
		logger.Log.Error("upload open err", zap.String("filename", fh.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to read upload",
		})
	}
	defer f.Close()

	objectName := uuid.New().String() + filepath.Ext(fh.Filename)
	contentType := fh.Header.Get("Content-Type")

	if err := h.store.UploadStream(c.Context(), objectName, f, fh.Size, contentType); err != nil {
		logger.Log.Error("upload store err", zap.String("object", objectName), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to store upload",
		})
	}

	url, err := h.store.PresignGetURL(c.Context(), objectName, presignedURLExpiry)
	if err != nil {
		logger.Log.Error("upload presign err", zap.String("object", objectName), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "failed to sign download url",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"fileUrl":  url,
		"filename": fh.Filename,
		"mimetype": contentType,
	})
}
