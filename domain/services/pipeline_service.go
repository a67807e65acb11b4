package services

import (
	"context"

	"clipforge/domain/models"
)

// PipelineOptions controls one batch run
type PipelineOptions struct {
	// Generate false prepares requests only (prompt inspection without
	// spending provider quota).
	Generate    bool
	Resolution  models.Resolution
	AspectRatio string
	// Download caches each completed segment video locally. A download
	// failure never flips a completed segment back to failed.
	Download bool
}

// PipelineService runs the per-segment generation pipeline.
//
// Run processes segments strictly in ascending segment order, one at a
// time. Per-segment failures are contained as failed records inside
// the BatchResult; Run only errors on structural problems such as an
// empty script.
//
// Retry re-generates only the failed subset of a previous result. It
// mutates the BatchResult it is given and returns the same pointer;
// callers pass ownership and must not hold concurrent references.
type PipelineService interface {
	Run(ctx context.Context, script *models.Script, opts PipelineOptions) (*models.BatchResult, error)
	Retry(ctx context.Context, previous *models.BatchResult, maxRetries int) (*models.BatchResult, error)
	FailedSegmentsInfo(batch *models.BatchResult) *models.FailedSegmentsInfo
}
