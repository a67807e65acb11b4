package services

import (
	"context"

	"clipforge/domain/models"
)

// MergeOptions controls one merge invocation
type MergeOptions struct {
	OutputFilename string
	// ServerSide false skips all file I/O and returns a client_side
	// result with merge instructions.
	ServerSide bool
	// CleanupSegments deletes the original downloaded segment files
	// after a successful merge. Distinct from the per-merge temp dir,
	// which is always removed.
	CleanupSegments bool
	SegmentFiles    []string // original downloads, cleanup targets

	// Thumbnail inputs
	Title      string
	Characters map[string]models.CharacterProfile
	Reference  *models.ImageRef
}

// MergeService concatenates ordered segment videos into one artifact.
// All-or-nothing: a single failed download aborts the merge with no
// partial output left behind.
type MergeService interface {
	Merge(ctx context.Context, videoURLs []string, opts MergeOptions) (*models.MergeResult, error)
}
