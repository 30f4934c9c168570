package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/soundgate/internal/domain"
)

// Request headers the API reads.
const (
	HeaderProject = "X-Appwrite-Project"
	HeaderSession = "X-Appwrite-Session"
)

// SessionResolver maps a session secret to its session and user.
type SessionResolver interface {
	Resolve(ctx context.Context, secret string) (*domain.Session, *domain.User, error)
}

// SessionMiddleware resolves the caller's session from the session header
// (native clients) or the project's session cookie (browsers). Requests
// without a valid session continue as guests.
func SessionMiddleware(resolver SessionResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		secret := c.Get(HeaderSession)
		if secret == "" {
			project := c.Get(HeaderProject)
			if project == "" {
				project = c.Query("project")
			}
			if project != "" {
				secret = c.Cookies(domain.SessionCookieName(project))
			}
		}
		if secret == "" {
			return c.Next()
		}

		session, user, err := resolver.Resolve(c.Context(), secret)
		if err != nil {
			return c.Next()
		}
		session.Current = true
		c.Locals("session", session)
		c.Locals("user", user)
		return c.Next()
	}
}

// RequireSession rejects guests.
func RequireSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		if GetSession(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User (role: guests) missing scope (account)",
				"code":    fiber.StatusUnauthorized,
				"type":    "general_unauthorized_scope",
			})
		}
		return c.Next()
	}
}

// GetSession returns the caller's session, or nil for guests.
func GetSession(c fiber.Ctx) *domain.Session {
	s, ok := c.Locals("session").(*domain.Session)
	if !ok {
		return nil
	}
	return s
}

// GetUser returns the caller's user, or nil for guests.
func GetUser(c fiber.Ctx) *domain.User {
	u, ok := c.Locals("user").(*domain.User)
	if !ok {
		return nil
	}
	return u
}
