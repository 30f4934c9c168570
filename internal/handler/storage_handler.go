package handler

import (
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/middleware"
	"github.com/arturoeanton/soundgate/internal/port"
)

// FileStore is what the storage endpoints need from the blob store.
type FileStore interface {
	port.Storage
	port.FileContent
}

// StorageHandler serves bucket files.
type StorageHandler struct {
	files FileStore
	audit middleware.AuditWriter
	newID func() string
}

// NewStorageHandler creates a storage handler. audit may be nil.
func NewStorageHandler(files FileStore, audit middleware.AuditWriter) *StorageHandler {
	return &StorageHandler{files: files, audit: audit, newID: uuid.NewString}
}

// Register sets up file routes. Views are public so view URLs work in
// media players.
func (h *StorageHandler) Register(router fiber.Router) {
	files := router.Group("/storage/buckets/:bucket/files")
	files.Get("/", h.List)
	files.Post("/", middleware.RequireSession(), h.Create)
	files.Get("/:id/view", h.View)
	files.Delete("/:id", middleware.RequireSession(), h.Delete)
}

// Create stores a multipart upload.
func (h *StorageHandler) Create(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "storage_file_empty", "Empty file passed to the endpoint.")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	payload := &domain.UploadPayload{
		Name:     fh.Filename,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Data:     data,
	}

	id := newID(c.FormValue("fileId"), h.newID)
	file, err := h.files.CreateFile(c.Context(), c.Params("bucket"), id, payload)
	if err != nil {
		return respondError(c, err)
	}
	recordAudit(h.audit, c, middleware.GetSession(c).UserID, domain.AuditActionUpload, file.BucketID, file.ID)
	return c.Status(fiber.StatusCreated).JSON(file)
}

// List returns a page of the bucket's files.
func (h *StorageHandler) List(c fiber.Ctx) error {
	qs, err := queries(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.files.ListFiles(c.Context(), c.Params("bucket"), qs...)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// View streams the file content with its stored media type.
func (h *StorageHandler) View(c fiber.Ctx) error {
	file, content, err := h.files.GetFile(c.Context(), c.Params("bucket"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.MimeType)
	return c.Send(content)
}

// Delete removes a file.
func (h *StorageHandler) Delete(c fiber.Ctx) error {
	if err := h.files.DeleteFile(c.Context(), c.Params("bucket"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
