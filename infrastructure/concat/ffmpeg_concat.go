package concat

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipforge/domain/ports"
	"clipforge/pkg/logger"
)

// StreamCopyConcat joins segments with ffmpeg's concat demuxer without
// re-encoding. Fast and lossless, but requires every segment to share
// codec, resolution and timebase.
type StreamCopyConcat struct {
	ffmpegPath string
}

// Ensure StreamCopyConcat implements VideoConcatenator interface
var _ ports.VideoConcatenator = (*StreamCopyConcat)(nil)

func NewStreamCopyConcat(ffmpegPath string) *StreamCopyConcat {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &StreamCopyConcat{ffmpegPath: ffmpegPath}
}

func (c *StreamCopyConcat) Name() string { return "stream_copy" }

func (c *StreamCopyConcat) Concat(ctx context.Context, inputs []string, outputPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files to concatenate")
	}

	listPath, err := writeConcatList(inputs, outputPath)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outputPath,
	}

	logger.InfoContext(ctx, "Running stream-copy concat", "inputs", len(inputs), "output", outputPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("stream-copy concat failed: %w: %s", err, tail(stderr.String()))
	}
	return nil
}

// writeConcatList writes the demuxer file list next to the output.
// Single quotes in paths are escaped per the demuxer's quoting rules.
func writeConcatList(inputs []string, outputPath string) (string, error) {
	var b strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return "", fmt.Errorf("failed to resolve input path %s: %w", in, err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}

	listPath := filepath.Join(filepath.Dir(outputPath), "concat_list.txt")
	if err := os.WriteFile(listPath, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	return listPath, nil
}

// tail keeps the last chunk of ffmpeg's stderr, where the actual
// failure reason lives
func tail(s string) string {
	const max = 400
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
