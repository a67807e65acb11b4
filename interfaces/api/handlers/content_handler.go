package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"clipforge/domain/services"
	"clipforge/pkg/logger"
	"clipforge/pkg/utils"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// ListContent lists all stored content entries
func (h *ContentHandler) ListContent(c *fiber.Ctx) error {
	ctx := c.UserContext()

	entries, err := h.contentService.ListContent(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list content", "error", err)
		return utils.InternalServerErrorResponse(c)
	}

	return utils.SuccessResponse(c, fiber.Map{
		"entries": entries,
		"total":   len(entries),
	})
}

// GetContent returns the stored script and batch result for one slug
func (h *ContentHandler) GetContent(c *fiber.Ctx) error {
	ctx := c.UserContext()

	contentType := c.Params("type")
	slug := c.Params("slug")

	content, err := h.contentService.GetContent(ctx, contentType, slug)
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			return utils.NotFoundResponse(c, "Content not found")
		}
		logger.ErrorContext(ctx, "Failed to load content", "type", contentType, "slug", slug, "error", err)
		return utils.InternalServerErrorResponse(c)
	}

	return utils.SuccessResponse(c, content)
}
