package models

// SegmentStatus is the lifecycle state of one segment inside a batch
type SegmentStatus string

const (
	SegmentStatusPending    SegmentStatus = "pending"
	SegmentStatusProcessing SegmentStatus = "processing"
	SegmentStatusCompleted  SegmentStatus = "completed"
	SegmentStatusFailed     SegmentStatus = "failed"
)

// IsTerminal reports whether the status will not change without a retry round
func (s SegmentStatus) IsTerminal() bool {
	return s == SegmentStatusCompleted || s == SegmentStatusFailed
}

// SegmentResult tracks one segment across generation and retry rounds.
// A failed record is never deleted; a later retry round may flip it to
// completed.
type SegmentResult struct {
	SegmentNumber  int           `json:"segment_number"`
	Status         SegmentStatus `json:"status"`
	VideoURL       string        `json:"video_url,omitempty"`
	DownloadedFile string        `json:"downloaded_file,omitempty"`
	Error          string        `json:"error,omitempty"`
	RetryAttempts  int           `json:"retry_attempts"`
	RetrySuccess   bool          `json:"retry_success,omitempty"`
	RetryError     string        `json:"retry_error,omitempty"`

	// Request is the prepared provider request, kept so a dry run can
	// be inspected and a retry round can re-submit without re-extracting.
	Request *VideoRequest `json:"request,omitempty"`
}

// BatchResult is the serializable checkpoint for one script's
// generation run. It is owned by the caller between rounds; there is
// no hidden persistent store behind it.
type BatchResult struct {
	ContentTitle    string           `json:"content_title"`
	TotalSegments   int              `json:"total_segments"`
	SegmentsResults []*SegmentResult `json:"segments_results"`
	SuccessCount    int              `json:"success_count"`
	ErrorCount      int              `json:"error_count"`
	VideoURLs       []string         `json:"video_urls"`
	DownloadedFiles []string         `json:"downloaded_files"`
	Message         string           `json:"message,omitempty"`
}

// FindSegment returns the result record for a segment number
func (b *BatchResult) FindSegment(number int) *SegmentResult {
	for _, r := range b.SegmentsResults {
		if r.SegmentNumber == number {
			return r
		}
	}
	return nil
}

// FailedSegments returns the records still in failed status, in order
func (b *BatchResult) FailedSegments() []*SegmentResult {
	var failed []*SegmentResult
	for _, r := range b.SegmentsResults {
		if r.Status == SegmentStatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// BatchStats summarizes a batch by status, for monitoring
type BatchStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Stats counts segment records by status
func (b *BatchResult) Stats() BatchStats {
	stats := BatchStats{Total: len(b.SegmentsResults)}
	for _, r := range b.SegmentsResults {
		switch r.Status {
		case SegmentStatusPending:
			stats.Pending++
		case SegmentStatusProcessing:
			stats.Processing++
		case SegmentStatusCompleted:
			stats.Completed++
		case SegmentStatusFailed:
			stats.Failed++
		}
	}
	return stats
}

// FailedSegmentsInfo tells a caller whether a retry round is worth invoking
type FailedSegmentsInfo struct {
	TotalFailed          int   `json:"total_failed"`
	FailedSegmentNumbers []int `json:"failed_segment_numbers"`
	CanRetry             bool  `json:"can_retry"`
}
