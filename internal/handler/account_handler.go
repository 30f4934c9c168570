package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/middleware"
)

// Identity is the account backend the handler drives.
type Identity interface {
	Register(ctx context.Context, userID, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, userID string) error
	LogoutSession(ctx context.Context, session *domain.Session) error
}

// AccountHandler serves the account and session endpoints.
type AccountHandler struct {
	identity Identity
	audit    middleware.AuditWriter
}

// NewAccountHandler creates an account handler. audit may be nil.
func NewAccountHandler(identity Identity, audit middleware.AuditWriter) *AccountHandler {
	return &AccountHandler{identity: identity, audit: audit}
}

// Register sets up account routes.
func (h *AccountHandler) Register(router fiber.Router) {
	account := router.Group("/account")
	account.Post("/", h.Create)
	account.Post("/sessions/email", h.CreateEmailPasswordSession)
	account.Get("/", middleware.RequireSession(), h.Get)
	account.Get("/sessions/:id", middleware.RequireSession(), h.GetSession)
	account.Delete("/sessions", middleware.RequireSession(), h.DeleteSessions)
	account.Delete("/sessions/:id", middleware.RequireSession(), h.DeleteSession)
}

// Create registers a new account.
func (h *AccountHandler) Create(c fiber.Ctx) error {
	var body struct {
		UserID   string `json:"userId"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return apiError(c, fiber.StatusBadRequest, "general_argument_invalid", "invalid request body")
	}

	user, err := h.identity.Register(c.Context(), body.UserID, body.Email, body.Password, body.Name)
	if err != nil {
		return respondError(c, err)
	}
	h.record(c, user.ID, domain.AuditActionSignUp, user.ID)
	return c.Status(fiber.StatusCreated).JSON(user)
}

// CreateEmailPasswordSession signs in. Browsers get the session cookie;
// native clients read the secret from the body.
func (h *AccountHandler) CreateEmailPasswordSession(c fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return apiError(c, fiber.StatusBadRequest, "general_argument_invalid", "invalid request body")
	}

	session, err := h.identity.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return respondError(c, err)
	}

	if project := c.Get(middleware.HeaderProject); project != "" {
		c.Cookie(&fiber.Cookie{
			Name:     domain.SessionCookieName(project),
			Value:    session.Secret,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	session.Current = true
	h.record(c, session.UserID, domain.AuditActionLogin, session.ID)
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Get returns the caller's account.
func (h *AccountHandler) Get(c fiber.Ctx) error {
	return c.JSON(middleware.GetUser(c))
}

// GetSession returns the caller's session by id or by the "current" alias.
func (h *AccountHandler) GetSession(c fiber.Ctx) error {
	s := *middleware.GetSession(c)
	if id := c.Params("id"); id != "current" && id != s.ID {
		return apiError(c, fiber.StatusNotFound, "user_session_not_found", "Session not found.")
	}
	s.Secret = ""
	return c.JSON(s)
}

// DeleteSessions signs the caller out everywhere.
func (h *AccountHandler) DeleteSessions(c fiber.Ctx) error {
	s := middleware.GetSession(c)
	if err := h.identity.Logout(c.Context(), s.UserID); err != nil {
		return respondError(c, err)
	}
	if project := c.Get(middleware.HeaderProject); project != "" {
		c.Cookie(&fiber.Cookie{
			Name:     domain.SessionCookieName(project),
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
		})
	}
	h.record(c, s.UserID, domain.AuditActionLogout, s.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteSession signs out the caller's own session, by id or "current".
// Other sessions are not addressable by id.
func (h *AccountHandler) DeleteSession(c fiber.Ctx) error {
	s := middleware.GetSession(c)
	if id := c.Params("id"); id != "current" && id != s.ID {
		return apiError(c, fiber.StatusNotFound, "user_session_not_found", "Session not found.")
	}
	if err := h.identity.LogoutSession(c.Context(), s); err != nil {
		return respondError(c, err)
	}
	if project := c.Get(middleware.HeaderProject); project != "" {
		c.Cookie(&fiber.Cookie{
			Name:     domain.SessionCookieName(project),
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
		})
	}
	h.record(c, s.UserID, domain.AuditActionLogout, s.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccountHandler) record(c fiber.Ctx, userID, action, resourceID string) {
	recordAudit(h.audit, c, userID, action, "account", resourceID)
}
