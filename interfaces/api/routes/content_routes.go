package routes

import (
	"github.com/gofiber/fiber/v2"

	"clipforge/interfaces/api/handlers"
	"clipforge/interfaces/api/middleware"
)

func SetupContentRoutes(api fiber.Router, h *handlers.Handlers, jwtSecret string) {
	content := api.Group("/content")
	content.Use(middleware.Protected(jwtSecret))
	content.Get("/", h.ContentHandler.ListContent)
	content.Get("/:type/:slug", h.ContentHandler.GetContent)
}
