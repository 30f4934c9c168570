package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/soundgate/internal/port"
)

// apiError is the error body clients decode.
func apiError(c fiber.Ctx, status int, typ, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"code":    status,
		"type":    typ,
	})
}

// respondError maps a service error to its HTTP status.
func respondError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, port.ErrInvalidCredentials):
		return apiError(c, fiber.StatusUnauthorized, "user_invalid_credentials",
			"Invalid credentials. Please check the email and password.")
	case errors.Is(err, port.ErrUnauthorized):
		return apiError(c, fiber.StatusUnauthorized, "general_unauthorized_scope", "Unauthorized")
	case errors.Is(err, port.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, "not_found", "The requested resource could not be found.")
	case errors.Is(err, port.ErrConflict):
		return apiError(c, fiber.StatusConflict, "conflict", "A resource with the same id already exists.")
	case errors.Is(err, port.ErrInvalidArgument):
		return apiError(c, fiber.StatusBadRequest, "general_argument_invalid", err.Error())
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
		return apiError(c, fiber.StatusInternalServerError, "general_unknown", "Server Error")
	}
}

// queries decodes the repeated `queries[]` parameter.
func queries(c fiber.Ctx) ([]port.Query, error) {
	raw := c.Request().URI().QueryArgs().PeekMulti("queries[]")
	out := make([]port.Query, 0, len(raw))
	for _, r := range raw {
		q, err := port.ParseQuery(string(r))
		if err != nil {
			return nil, errors.Join(port.ErrInvalidArgument, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// newID honours the client's id unless it asked the server to pick one.
func newID(requested string, gen func() string) string {
	if requested == "" || requested == "unique()" {
		return gen()
	}
	return requested
}
