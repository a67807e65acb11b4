package concat

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"clipforge/domain/ports"
	"clipforge/pkg/logger"
)

// ReencodeConcat joins segments through the concat filter, decoding
// and re-encoding every stream. Slower than stream copy but tolerates
// codec and timebase mismatches between segments.
type ReencodeConcat struct {
	ffmpegPath string
}

// Ensure ReencodeConcat implements VideoConcatenator interface
var _ ports.VideoConcatenator = (*ReencodeConcat)(nil)

func NewReencodeConcat(ffmpegPath string) *ReencodeConcat {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &ReencodeConcat{ffmpegPath: ffmpegPath}
}

func (c *ReencodeConcat) Name() string { return "reencode" }

func (c *ReencodeConcat) Concat(ctx context.Context, inputs []string, outputPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input files to concatenate")
	}

	var args []string
	for _, in := range inputs {
		args = append(args, "-i", in)
	}

	// build "[0:v][0:a][1:v][1:a]...concat=n=N:v=1:a=1[outv][outa]"
	var filter strings.Builder
	for i := range inputs {
		fmt.Fprintf(&filter, "[%d:v][%d:a]", i, i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=1:a=1[outv][outa]", len(inputs))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ac", "2",
		"-y",
		outputPath,
	)

	logger.InfoContext(ctx, "Running re-encode concat", "inputs", len(inputs), "output", outputPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("re-encode concat failed: %w: %s", err, tail(stderr.String()))
	}
	return nil
}
