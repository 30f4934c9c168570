package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/middleware"
)

// recordAudit writes an audit entry off the request path. w may be nil.
func recordAudit(w middleware.AuditWriter, c fiber.Ctx, userID, action, resource, resourceID string) {
	if w == nil {
		return
	}
	ip, ua := c.IP(), c.Get("User-Agent")
	go func() {
		if err := w.WriteAudit(userID, action, resource, resourceID, "{}", ip, ua); err != nil {
			slog.Error("failed to write audit log", "action", action, "error", err)
		}
	}()
}

// AuditLister reads back audit records.
type AuditLister interface {
	ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error)
}

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	store AuditLister
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store AuditLister) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audit := router.Group("/audit", middleware.RequireSession())
	audit.Get("/logs", h.ListLogs)
}

// ListLogs returns audit logs with optional filtering.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit < 0 {
		return apiError(c, fiber.StatusBadRequest, "general_argument_invalid", "limit must be a positive number")
	}
	action := c.Query("action", "")

	logs, err := h.store.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
