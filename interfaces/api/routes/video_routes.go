package routes

import (
	"github.com/gofiber/fiber/v2"

	"clipforge/interfaces/api/handlers"
	"clipforge/interfaces/api/middleware"
)

func SetupVideoRoutes(api fiber.Router, h *handlers.Handlers, jwtSecret string) {
	videos := api.Group("/videos")
	videos.Use(middleware.Protected(jwtSecret))
	videos.Post("/generate", h.VideoHandler.GenerateVideos)
	videos.Post("/retry", h.VideoHandler.RetryVideos)
	videos.Post("/failed-info", h.VideoHandler.FailedInfo)
	videos.Post("/merge", h.VideoHandler.MergeVideos)
}
