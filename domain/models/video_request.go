package models

import "strings"

// Resolution values accepted at the API boundary
type Resolution string

const (
	Resolution480p Resolution = "480p"
	Resolution720p Resolution = "720p"
	Resolution1080 Resolution = "1080p"
	Resolution4K   Resolution = "4K"
)

// Valid reports whether the resolution is one of the accepted values
func (r Resolution) Valid() bool {
	switch r {
	case Resolution480p, Resolution720p, Resolution1080, Resolution4K:
		return true
	}
	return false
}

// ProviderValue maps the API resolution onto the value the video
// provider accepts. The provider's floor is 720p, so 480p requests
// are generated at 720p.
func (r Resolution) ProviderValue() string {
	switch r {
	case Resolution480p:
		return "720p"
	case Resolution4K:
		return "4k"
	default:
		return strings.ToLower(string(r))
	}
}

// ImageRef points at an image by URI or carries it inline as bytes
type ImageRef struct {
	URI      string `json:"uri,omitempty"`
	Bytes    []byte `json:"-"`
	MIMEType string `json:"mime_type,omitempty"`
}

// IsZero reports whether the ref carries no image at all
func (r *ImageRef) IsZero() bool {
	return r == nil || (r.URI == "" && len(r.Bytes) == 0)
}

// VideoRequest is the provider-facing request for one segment.
// Built fresh per segment; never persisted.
//
// FirstFrame is attached as the generation seed and LastFrame as the
// interpolation target. ReferenceImages bias character appearance and
// are only usable when no seed frame is given; the provider cannot
// combine a seed image with reference images in one call.
type VideoRequest struct {
	Prompt          string     `json:"prompt"`
	DurationSeconds int        `json:"duration_seconds"`
	Resolution      Resolution `json:"resolution"`
	AspectRatio     string     `json:"aspect_ratio"` // "W:H", e.g. "9:16"
	FirstFrame      *ImageRef  `json:"first_frame,omitempty"`
	LastFrame       *ImageRef  `json:"last_frame,omitempty"`
	ReferenceImages []ImageRef `json:"reference_images,omitempty"`
}
