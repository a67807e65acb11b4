package serviceimpl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"clipforge/domain/models"
	"clipforge/domain/ports"
	"clipforge/domain/services"
	"clipforge/pkg/config"
	"clipforge/pkg/logger"
	"clipforge/pkg/utils"
)

// clientSideInstructions is the fixed guidance returned in client_side
// mode, where the caller performs the merge itself.
var clientSideInstructions = []string{
	"Download each video in the listed order.",
	"Join the files with a concat tool that preserves stream copy, e.g. ffmpeg -f concat.",
	"Keep the segment order exactly as listed; do not reorder or skip entries.",
	"Upload or serve the joined file as the final artifact.",
}

// MergeServiceImpl downloads ordered segment videos and concatenates
// them through a fallback chain of backends. All-or-nothing: one
// failed download aborts the merge and the per-merge temp dir is
// always removed.
type MergeServiceImpl struct {
	config        config.MergeConfig
	concatenators []ports.VideoConcatenator // ordered: fastest first
	downloader    ports.VideoDownloaderPort
	thumbnailer   ports.ThumbnailPort
	store         ports.ArtifactStorePort
}

// Ensure MergeServiceImpl implements MergeService interface
var _ services.MergeService = (*MergeServiceImpl)(nil)

func NewMergeService(
	cfg config.MergeConfig,
	concatenators []ports.VideoConcatenator,
	downloader ports.VideoDownloaderPort,
	thumbnailer ports.ThumbnailPort,
	store ports.ArtifactStorePort,
) services.MergeService {
	svc := &MergeServiceImpl{
		config:        cfg,
		concatenators: concatenators,
		downloader:    downloader,
		thumbnailer:   thumbnailer,
		store:         store,
	}

	if svc.config.OutputDir == "" {
		svc.config.OutputDir = "merged_videos"
	}
	if svc.config.TempDir == "" {
		svc.config.TempDir = "temp"
	}

	return svc
}

func (m *MergeServiceImpl) Merge(ctx context.Context, videoURLs []string, opts services.MergeOptions) (*models.MergeResult, error) {
	if len(videoURLs) == 0 {
		return nil, services.ErrNoVideoURLs
	}

	outputName := m.outputName(opts)

	if !opts.ServerSide {
		return m.clientSideResult(ctx, videoURLs, opts), nil
	}

	result := &models.MergeResult{}

	// per-invocation temp dir, unique so concurrent merges never share
	tempDir := filepath.Join(m.config.TempDir, "merge_"+uuid.New().String())
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create merge temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger.InfoContext(ctx, "Merge started",
		"segments", len(videoURLs),
		"output", outputName,
		"temp_dir", tempDir,
	)

	// 1. download every segment in order; any failure aborts the merge
	files := make([]string, 0, len(videoURLs))
	for i, url := range videoURLs {
		destPath := filepath.Join(tempDir, fmt.Sprintf("segment_%d.mp4", i+1))
		path, _, err := m.downloader.Download(ctx, url, destPath)
		if err != nil {
			result.Success = false
			result.Error = fmt.Sprintf("segment %d download failed: %v", i+1, err)
			logger.WarnContext(ctx, "Merge aborted on segment download", "segment", i+1, "error", err)
			return result, nil
		}
		files = append(files, path)
	}

	// 2. concatenate through the fallback chain
	outputTemp := filepath.Join(tempDir, outputName)
	method, err := m.concat(ctx, files, outputTemp)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, nil
	}
	result.Method = models.MergeMethod(method)
	result.SegmentsMerged = len(files)

	info, err := os.Stat(outputTemp)
	if err != nil {
		result.Success = false
		result.Error = fmt.Sprintf("merged file missing: %v", err)
		return result, nil
	}
	result.FileSize = info.Size()

	// 3. persist the artifact before the temp dir goes away
	storedURL, err := m.storeArtifact(outputTemp, filepath.Join(m.config.OutputDir, outputName), "video/mp4")
	if err != nil {
		result.Success = false
		result.Error = fmt.Sprintf("failed to store merged video: %v", err)
		return result, nil
	}
	result.Success = true
	result.OutputFile = storedURL

	logger.InfoContext(ctx, "Merge completed",
		"method", method,
		"segments", result.SegmentsMerged,
		"bytes", result.FileSize,
		"output", storedURL,
	)

	// 4. optional cleanup of the original generation-phase downloads;
	// individual failures never fail the merge
	if opts.CleanupSegments {
		result.CleanupErrors = m.cleanupSegmentFiles(ctx, opts.SegmentFiles)
	}

	result.Thumbnail = m.generateThumbnail(ctx, opts, outputTemp, outputName)

	return result, nil
}

// concat tries each backend in order and returns the name of the one
// that succeeded. When all fail, the last backend's error is surfaced
// since the re-encode path reports the most detail.
func (m *MergeServiceImpl) concat(ctx context.Context, files []string, outputPath string) (string, error) {
	var lastErr error
	for _, c := range m.concatenators {
		err := c.Concat(ctx, files, outputPath)
		if err == nil {
			logger.InfoContext(ctx, "Concat backend succeeded", "backend", c.Name())
			return c.Name(), nil
		}
		lastErr = err
		logger.WarnContext(ctx, "Concat backend failed, trying next", "backend", c.Name(), "error", err)
		// a half-written output from a failed backend must not leak
		os.Remove(outputPath)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no concat backends configured")
	}
	return "", lastErr
}

func (m *MergeServiceImpl) clientSideResult(ctx context.Context, videoURLs []string, opts services.MergeOptions) *models.MergeResult {
	result := &models.MergeResult{
		Success:        true,
		Method:         models.MergeMethodClientSide,
		SegmentsMerged: len(videoURLs),
		VideoURLs:      append([]string(nil), videoURLs...),
		Instructions:   clientSideInstructions,
	}

	logger.InfoContext(ctx, "Client-side merge requested", "segments", len(videoURLs))

	result.Thumbnail = m.generateThumbnail(ctx, opts, "", m.outputName(opts))
	return result
}

func (m *MergeServiceImpl) outputName(opts services.MergeOptions) string {
	name := opts.OutputFilename
	if name == "" {
		slug := utils.SanitizeTitle(opts.Title)
		name = fmt.Sprintf("%s_%s", slug, time.Now().Format("20060102_150405"))
	}
	return utils.EnsureExt(utils.SanitizeFileName(name), ".mp4")
}

// storeArtifact pushes a local file into the artifact store
func (m *MergeServiceImpl) storeArtifact(localPath, storagePath, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return m.store.Save(f, storagePath, contentType)
}

func (m *MergeServiceImpl) cleanupSegmentFiles(ctx context.Context, files []string) []string {
	var cleanupErrors []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			cleanupErrors = append(cleanupErrors, fmt.Sprintf("%s: %v", f, err))
		}
	}
	if len(cleanupErrors) > 0 {
		logger.WarnContext(ctx, "Some segment files could not be removed", "errors", len(cleanupErrors))
	} else if len(files) > 0 {
		logger.InfoContext(ctx, "Segment files cleaned up", "count", len(files))
	}
	return cleanupErrors
}

// generateThumbnail runs after a successful merge. Failure is reported
// in the result but never downgrades the merge itself.
func (m *MergeServiceImpl) generateThumbnail(ctx context.Context, opts services.MergeOptions, mergedFile, outputName string) *models.ThumbnailResult {
	if m.thumbnailer == nil {
		return nil
	}

	thumbLocal := filepath.Join(m.config.TempDir, "thumb_"+uuid.New().String()+".jpg")
	defer os.Remove(thumbLocal)

	thumb := m.thumbnailer.Generate(ctx, &ports.ThumbnailRequest{
		Title:      opts.Title,
		Characters: opts.Characters,
		Reference:  opts.Reference,
		VideoFile:  mergedFile,
		OutputPath: thumbLocal,
	})
	if thumb == nil {
		return nil
	}
	if !thumb.Success {
		logger.WarnContext(ctx, "Thumbnail generation failed", "error", thumb.Error)
		return thumb
	}

	storagePath := filepath.Join(m.config.OutputDir, utils.EnsureExt(outputName[:len(outputName)-len(filepath.Ext(outputName))]+"_thumb", ".jpg"))
	url, err := m.storeArtifact(thumb.FilePath, storagePath, "image/jpeg")
	if err != nil {
		thumb.Success = false
		thumb.Error = fmt.Sprintf("failed to store thumbnail: %v", err)
		return thumb
	}
	thumb.FilePath = url
	return thumb
}
