package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/opsdesk/internal/auth"
	"github.com/opsdesk/opsdesk/internal/blob"
	apperrors "github.com/opsdesk/opsdesk/pkg/util"
)

const maxAttachmentBytes = 20 << 20

// AttachmentsHandler accepts file uploads and returns blob URLs that can
// be referenced from tickets and comments.
type AttachmentsHandler struct {
	store blob.Store
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(store blob.Store) *AttachmentsHandler {
	return &AttachmentsHandler{store: store}
}

// Upload POST /attachments.
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	if _, ok := auth.ActorFromContext(c); !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file field required", nil)
	}
	if fileHeader.Size > maxAttachmentBytes {
		return apperrors.NewValidationError("file too large", map[string]any{"max_bytes": maxAttachmentBytes})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apperrors.MapError(err)
	}
	defer f.Close()

	url, err := h.store.Upload(c.Context(), fileHeader.Filename, f)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"url": url}})
}
