package routes

import (
	"github.com/gofiber/fiber/v2"

	"clipforge/interfaces/api/handlers"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, jwtSecret string) {
	// Setup health and root routes
	SetupHealthRoutes(app)

	// API version group
	api := app.Group("/api/v1")

	// Setup all route groups
	SetupVideoRoutes(api, h, jwtSecret)
	SetupContentRoutes(api, h, jwtSecret)
	SetupMonitoringRoutes(api, h, jwtSecret)
}
