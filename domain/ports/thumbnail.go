package ports

import (
	"context"

	"clipforge/domain/models"
)

// ThumbnailRequest carries what the generator needs for one title image
type ThumbnailRequest struct {
	Title      string
	Characters map[string]models.CharacterProfile
	// Reference is an optional keyframe from generation, used to keep
	// the thumbnail's style consistent with the video.
	Reference *models.ImageRef
	// VideoFile enables the frame-grab fallback when set
	VideoFile  string
	OutputPath string
}

// ThumbnailPort produces a single representative title image.
// Implementations report failure inside the result; the error return
// is reserved for invalid input.
type ThumbnailPort interface {
	Generate(ctx context.Context, req *ThumbnailRequest) *models.ThumbnailResult
}
