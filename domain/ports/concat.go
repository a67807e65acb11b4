package ports

import "context"

// VideoConcatenator joins ordered local video files into one output
// file. Input order is the playback order; implementations must not
// reorder.
type VideoConcatenator interface {
	// Name identifies the backend in logs and MergeResult.Method
	Name() string
	Concat(ctx context.Context, inputs []string, outputPath string) error
}
