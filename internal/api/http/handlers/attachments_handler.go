package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-ops/grievance-service/internal/auth"
	"github.com/campus-ops/grievance-service/internal/blobstore"
	apperrors "github.com/campus-ops/grievance-service/pkg/util"
)

// maxAttachmentBytes caps uploads at 10 MiB.
const maxAttachmentBytes = 10 << 20

// AttachmentsHandler stores and serves grievance attachments.
type AttachmentsHandler struct {
	store blobstore.Store
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(store blobstore.Store) *AttachmentsHandler {
	return &AttachmentsHandler{store: store}
}

// Upload POST /attachments. Multipart form with a "file" field; returns the
// opaque ref the grievance persists.
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
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

	ref, err := h.store.Store(fileHeader.Filename, f)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"ref": ref}})
}

// Download GET /attachments/:ref.
func (h *AttachmentsHandler) Download(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	r, err := h.store.Open(c.Params("ref"))
	if err != nil {
		return apperrors.NewNotFound("attachment", map[string]any{"ref": c.Params("ref")})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.SendStream(r)
}
