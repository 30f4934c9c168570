package handler

import "github.com/gofiber/fiber/v3"

// RegisterHealth mounts the health check.
func RegisterHealth(router fiber.Router, appName string) {
	router.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     appName,
			"version": "1.0.0",
		})
	})
}
