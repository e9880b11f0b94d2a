package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/database"
	"github.com/studentportal/portal-api/utils/response"
)

// HandleCheckHealth reports API and database health
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.Error(c, fiber.StatusServiceUnavailable, "Database unreachable", "SERVICE_UNAVAILABLE")
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	}
}
