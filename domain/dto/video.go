package dto

import (
	"clipforge/domain/models"
)

type GenerateVideosRequest struct {
	ContentData     *models.Script `json:"content_data" validate:"required"`
	GenerateVideos  *bool          `json:"generate_videos"`
	Resolution      string         `json:"resolution" validate:"omitempty,oneof=480p 720p 1080p 4K"`
	AspectRatio     string         `json:"aspect_ratio" validate:"omitempty,oneof=16:9 9:16 1:1"`
	Download        *bool          `json:"download"`
	AutoMerge       bool           `json:"auto_merge"`
	CleanupSegments bool           `json:"cleanup_segments"`
}

type GenerateVideosResponse struct {
	Batch *models.BatchResult `json:"batch"`
	Merge *models.MergeResult `json:"merge,omitempty"`
}

type RetryRequest struct {
	PreviousResult *models.BatchResult `json:"previous_result" validate:"required"`
	MaxRetries     int                 `json:"max_retries" validate:"omitempty,min=1,max=10"`
}

type FailedInfoRequest struct {
	PreviousResult *models.BatchResult `json:"previous_result" validate:"required"`
}

type MergeVideosRequest struct {
	Results         *models.BatchResult `json:"results" validate:"required"`
	OutputFilename  string              `json:"output_filename" validate:"omitempty,max=200"`
	ServerSide      *bool               `json:"server_side"`
	SkipMissing     bool                `json:"skip_missing"`
	CleanupSegments bool                `json:"cleanup_segments"`
}
