package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/middleware"
	"github.com/arturoeanton/soundgate/internal/port"
)

// DatabasesHandler serves collection documents.
type DatabasesHandler struct {
	db    port.Databases
	audit middleware.AuditWriter
	newID func() string
}

// NewDatabasesHandler creates a databases handler. audit may be nil.
func NewDatabasesHandler(db port.Databases, audit middleware.AuditWriter) *DatabasesHandler {
	return &DatabasesHandler{db: db, audit: audit, newID: uuid.NewString}
}

// Register sets up document routes. Reads are open to guests.
func (h *DatabasesHandler) Register(router fiber.Router) {
	docs := router.Group("/databases/:db/collections/:col/documents")
	docs.Get("/", h.List)
	docs.Post("/", middleware.RequireSession(), h.Create)
	docs.Patch("/:id", middleware.RequireSession(), h.Update)
}

// List returns the documents that match every `queries[]` predicate.
func (h *DatabasesHandler) List(c fiber.Ctx) error {
	qs, err := queries(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.db.ListDocuments(c.Context(), c.Params("db"), c.Params("col"), qs...)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Create stores a document.
func (h *DatabasesHandler) Create(c fiber.Ctx) error {
	var body struct {
		DocumentID string         `json:"documentId"`
		Data       map[string]any `json:"data"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return apiError(c, fiber.StatusBadRequest, "general_argument_invalid", "invalid request body")
	}

	id := newID(body.DocumentID, h.newID)
	doc, err := h.db.CreateDocument(c.Context(), c.Params("db"), c.Params("col"), id, body.Data)
	if err != nil {
		return respondError(c, err)
	}
	h.record(c, doc)
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Update merges attributes into a document.
func (h *DatabasesHandler) Update(c fiber.Ctx) error {
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return apiError(c, fiber.StatusBadRequest, "general_argument_invalid", "invalid request body")
	}

	doc, err := h.db.UpdateDocument(c.Context(), c.Params("db"), c.Params("col"), c.Params("id"), body.Data)
	if err != nil {
		return respondError(c, err)
	}
	h.record(c, doc)
	return c.JSON(doc)
}

func (h *DatabasesHandler) record(c fiber.Ctx, doc *domain.Document) {
	recordAudit(h.audit, c, middleware.GetSession(c).UserID, domain.AuditActionDocWrite,
		doc.DatabaseID+"/"+doc.CollectionID, doc.ID)
}
