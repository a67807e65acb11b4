package ports

import "context"

// Segment event types published during a pipeline run
const (
	SegmentEventStarted   = "segment_started"
	SegmentEventCompleted = "segment_completed"
	SegmentEventFailed    = "segment_failed"
	SegmentEventRetrying  = "segment_retrying"
	BatchEventCompleted   = "batch_completed"
)

// SegmentProgress is one progress update for a running batch
type SegmentProgress struct {
	ContentTitle  string `json:"content_title"`
	SegmentNumber int    `json:"segment_number,omitempty"`
	Event         string `json:"event"`
	Attempt       int    `json:"attempt,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	Error         string `json:"error,omitempty"`
	SuccessCount  int    `json:"success_count,omitempty"`
	ErrorCount    int    `json:"error_count,omitempty"`
}

// ProgressPublisherPort pushes per-segment progress to interested
// subscribers. Publishing is best effort; the pipeline never fails on
// a publish error.
type ProgressPublisherPort interface {
	PublishProgress(ctx context.Context, progress *SegmentProgress) error
}
