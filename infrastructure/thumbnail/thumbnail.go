package thumbnail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"clipforge/domain/models"
	"clipforge/domain/ports"
	"clipforge/pkg/config"
	"clipforge/pkg/logger"
)

// Generator produces a cover thumbnail for a merged video. The primary
// path asks the image model for a styled cover; when that fails, a
// frame grabbed from the merged file stands in. Thumbnail failure is
// reported in the result, never as an error.
type Generator struct {
	client     *genai.Client
	imageModel string
	ffmpegPath string
}

// Ensure Generator implements ThumbnailPort interface
var _ ports.ThumbnailPort = (*Generator)(nil)

func NewGenerator(client *genai.Client, videoCfg config.VideoGenConfig, mergeCfg config.MergeConfig) *Generator {
	g := &Generator{
		client:     client,
		imageModel: videoCfg.ImageModel,
		ffmpegPath: mergeCfg.FFmpegPath,
	}
	if g.imageModel == "" {
		g.imageModel = "imagen-3.0-generate-002"
	}
	if g.ffmpegPath == "" {
		g.ffmpegPath = "ffmpeg"
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, req *ports.ThumbnailRequest) *models.ThumbnailResult {
	if g.client != nil {
		if path, err := g.generateWithImagen(ctx, req); err == nil {
			return &models.ThumbnailResult{Success: true, Method: "imagen", FilePath: path}
		} else {
			logger.WarnContext(ctx, "Imagen thumbnail failed, falling back to frame grab",
				"title", req.Title,
				"error", err,
			)
		}
	}

	if req.VideoFile != "" {
		if err := g.grabFrame(ctx, req.VideoFile, req.OutputPath, 1); err == nil {
			return &models.ThumbnailResult{Success: true, Method: "frame_grab", FilePath: req.OutputPath}
		} else {
			logger.WarnContext(ctx, "Frame grab failed", "video", req.VideoFile, "error", err)
			return &models.ThumbnailResult{Success: false, Method: "frame_grab", Error: err.Error()}
		}
	}

	return &models.ThumbnailResult{Success: false, Method: "imagen", Error: "no thumbnail source available"}
}

func (g *Generator) generateWithImagen(ctx context.Context, req *ports.ThumbnailRequest) (string, error) {
	prompt := buildThumbnailPrompt(req)

	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "16:9",
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", fmt.Errorf("image model returned no image data")
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	if err := os.WriteFile(req.OutputPath, resp.GeneratedImages[0].Image.ImageBytes, 0644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}
	return req.OutputPath, nil
}

// grabFrame extracts one frame from the video as a jpg
func (g *Generator) grabFrame(ctx context.Context, inputPath, outputPath string, atSecond int) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	args := []string{
		"-ss", strconv.Itoa(atSecond),
		"-i", inputPath,
		"-vframes", "1",
		"-vf", "scale=320:-1", // width 320px, maintain aspect ratio
		"-q:v", "2",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, g.ffmpegPath, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to grab frame: %w", err)
	}
	return nil
}

func buildThumbnailPrompt(req *ports.ThumbnailRequest) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("A vibrant video cover thumbnail for %q.", req.Title))
	if len(req.Characters) > 0 {
		var names []string
		for _, c := range req.Characters {
			if c.Name != "" {
				names = append(names, c.Name)
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			parts = append(parts, "Featuring: "+strings.Join(names, ", ")+".")
		}
	}
	parts = append(parts, "Bold composition, readable at small sizes, no text overlay.")
	return strings.Join(parts, " ")
}
