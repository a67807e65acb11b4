package handlers

import (
	"github.com/gofiber/fiber/v2"

	"clipforge/domain/dto"
	"clipforge/pkg/utils"
)

type MonitoringHandler struct{}

func NewMonitoringHandler() *MonitoringHandler {
	return &MonitoringHandler{}
}

// BatchStats counts the segments of a previous result by status
func (h *MonitoringHandler) BatchStats(c *fiber.Ctx) error {
	var req dto.FailedInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	return utils.SuccessResponse(c, req.PreviousResult.Stats())
}
