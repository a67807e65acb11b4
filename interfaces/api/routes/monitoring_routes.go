package routes

import (
	"github.com/gofiber/fiber/v2"

	"clipforge/interfaces/api/handlers"
	"clipforge/interfaces/api/middleware"
)

func SetupMonitoringRoutes(api fiber.Router, h *handlers.Handlers, jwtSecret string) {
	monitoring := api.Group("/monitoring")
	monitoring.Use(middleware.Protected(jwtSecret))
	monitoring.Post("/batch-stats", h.MonitoringHandler.BatchStats)
}
