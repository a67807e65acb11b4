package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"clipforge/domain/dto"
	"clipforge/domain/models"
	"clipforge/domain/services"
	"clipforge/pkg/logger"
	"clipforge/pkg/utils"
)

type VideoHandler struct {
	pipelineService services.PipelineService
	mergeService    services.MergeService
	contentService  services.ContentService
}

func NewVideoHandler(
	pipelineService services.PipelineService,
	mergeService services.MergeService,
	contentService services.ContentService,
) *VideoHandler {
	return &VideoHandler{
		pipelineService: pipelineService,
		mergeService:    mergeService,
		contentService:  contentService,
	}
}

// GenerateVideos runs the segment pipeline for one script. Per-segment
// failures come back as failed records inside a 200 response; only
// structural problems map to 4xx.
func (h *VideoHandler) GenerateVideos(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.GenerateVideosRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		validationErrors := utils.GetValidationErrors(err)
		logger.WarnContext(ctx, "Validation failed", "errors", validationErrors)
		return utils.ValidationErrorResponse(c, validationErrors)
	}

	opts := services.PipelineOptions{
		Generate:    req.GenerateVideos == nil || *req.GenerateVideos,
		Resolution:  models.Resolution(req.Resolution),
		AspectRatio: req.AspectRatio,
		Download:    req.Download == nil || *req.Download,
	}

	logger.InfoContext(ctx, "Generation batch requested",
		"title", req.ContentData.Title,
		"segments", len(req.ContentData.Segments),
		"generate", opts.Generate,
		"download", opts.Download,
	)

	batch, err := h.pipelineService.Run(ctx, req.ContentData, opts)
	if err != nil {
		if errors.Is(err, services.ErrEmptyScript) {
			return utils.BadRequestResponse(c, "Script has no segments")
		}
		logger.ErrorContext(ctx, "Pipeline run failed", "error", err)
		return utils.InternalServerErrorResponse(c)
	}

	h.persistContent(c, req.ContentData, batch)

	resp := &dto.GenerateVideosResponse{Batch: batch}

	if req.AutoMerge && opts.Generate && batch.ErrorCount == 0 && len(batch.VideoURLs) > 0 {
		mergeResult, mergeErr := h.mergeService.Merge(ctx, batch.VideoURLs, services.MergeOptions{
			ServerSide:      true,
			CleanupSegments: req.CleanupSegments,
			SegmentFiles:    batch.DownloadedFiles,
			Title:           batch.ContentTitle,
			Characters:      req.ContentData.Characters,
		})
		if mergeErr != nil {
			logger.ErrorContext(ctx, "Auto-merge failed", "title", batch.ContentTitle, "error", mergeErr)
		} else {
			resp.Merge = mergeResult
		}
	}

	return utils.SuccessResponse(c, resp)
}

// RetryVideos re-runs only the failed segments of a previous batch
func (h *VideoHandler) RetryVideos(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.RetryRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	batch, err := h.pipelineService.Retry(ctx, req.PreviousResult, req.MaxRetries)
	if err != nil {
		logger.ErrorContext(ctx, "Retry round failed", "error", err)
		return utils.BadRequestResponse(c, err.Error())
	}

	return utils.SuccessResponse(c, batch)
}

// FailedInfo summarizes the failed subset of a previous batch
func (h *VideoHandler) FailedInfo(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.FailedInfoRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	info := h.pipelineService.FailedSegmentsInfo(req.PreviousResult)
	return utils.SuccessResponse(c, info)
}

// MergeVideos concatenates the completed segments of a batch. A merge
// that fails mid-flight still answers 200, with the failure inside the
// result.
func (h *VideoHandler) MergeVideos(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.MergeVideosRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	if !req.SkipMissing && req.Results.ErrorCount > 0 {
		return utils.BadRequestResponse(c, "Batch has failed segments; retry them or set skip_missing")
	}

	opts := services.MergeOptions{
		OutputFilename:  req.OutputFilename,
		ServerSide:      req.ServerSide == nil || *req.ServerSide,
		CleanupSegments: req.CleanupSegments,
		SegmentFiles:    req.Results.DownloadedFiles,
		Title:           req.Results.ContentTitle,
	}

	result, err := h.mergeService.Merge(ctx, req.Results.VideoURLs, opts)
	if err != nil {
		if errors.Is(err, services.ErrNoVideoURLs) {
			return utils.BadRequestResponse(c, "Batch has no video URLs to merge")
		}
		logger.ErrorContext(ctx, "Merge failed", "error", err)
		return utils.InternalServerErrorResponse(c)
	}

	return utils.SuccessResponse(c, result)
}

// persistContent saves the script and batch checkpoint. Best effort:
// persistence failure never fails the generation response.
func (h *VideoHandler) persistContent(c *fiber.Ctx, script *models.Script, batch *models.BatchResult) {
	ctx := c.UserContext()

	if _, err := h.contentService.SaveScript(ctx, script); err != nil {
		logger.WarnContext(ctx, "Failed to persist script", "title", script.Title, "error", err)
		return
	}
	if err := h.contentService.SaveBatchResult(ctx, script.ContentType, script.Title, batch); err != nil {
		logger.WarnContext(ctx, "Failed to persist batch result", "title", script.Title, "error", err)
	}
}
