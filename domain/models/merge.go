package models

// MergeMethod records which path produced the final artifact
type MergeMethod string

const (
	MergeMethodStreamCopy MergeMethod = "stream_copy"
	MergeMethodReencode   MergeMethod = "reencode"
	MergeMethodClientSide MergeMethod = "client_side"
)

// MergeResult is the outcome of one merge invocation
type MergeResult struct {
	Success        bool        `json:"success"`
	Method         MergeMethod `json:"method,omitempty"`
	OutputFile     string      `json:"output_file,omitempty"`
	FileSize       int64       `json:"file_size,omitempty"`
	SegmentsMerged int         `json:"segments_merged"`
	Error          string      `json:"error,omitempty"`

	// Client-side mode: the ordered URLs plus merge instructions for
	// the caller. Valid terminal outcome, not an error.
	VideoURLs    []string `json:"video_urls,omitempty"`
	Instructions []string `json:"instructions,omitempty"`

	// Per-file cleanup failures. Never fail the merge.
	CleanupErrors []string `json:"cleanup_errors,omitempty"`

	Thumbnail *ThumbnailResult `json:"thumbnail,omitempty"`
}

// ThumbnailResult reports thumbnail generation alongside a merge.
// Thumbnail failure never downgrades MergeResult.Success.
type ThumbnailResult struct {
	Success  bool   `json:"success"`
	Method   string `json:"method,omitempty"` // imagen, frame_grab
	FilePath string `json:"file_path,omitempty"`
	Error    string `json:"error,omitempty"`
}
