package engine

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"formsmith-backend/internal/storage"
)

// UploadHandler accepts file-field uploads ahead of submission and
// returns the metadata descriptor the file_upload transform consumes.
type UploadHandler struct {
	storage     *storage.LocalStorage
	maxFileSize int64
}

func NewUploadHandler(s *storage.LocalStorage, maxFileSize int64) *UploadHandler {
	return &UploadHandler{storage: s, maxFileSize: maxFileSize}
}

// Upload handles POST /api/uploads (multipart/form-data, "file" part).
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, "Missing file part")
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return NewAppError("FILE_TOO_LARGE", 413,
			fmt.Sprintf("File exceeds the %d byte limit", h.maxFileSize))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	uploadID := uuid.New().String()
	path, err := h.storage.Save(c.Context(), uploadID, fileHeader.Filename, src)
	if err != nil {
		return fmt.Errorf("store upload: %w", err)
	}

	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{
		"id":           uploadID,
		"filename":     fileHeader.Filename,
		"size":         fileHeader.Size,
		"content_type": fileHeader.Header.Get("Content-Type"),
		"path":         path,
	}})
}
