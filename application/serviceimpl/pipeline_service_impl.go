package serviceimpl

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"clipforge/domain/models"
	"clipforge/domain/ports"
	"clipforge/domain/services"
	"clipforge/pkg/config"
	"clipforge/pkg/logger"
	"clipforge/pkg/utils"
)

// PipelineServiceImpl drives per-segment video generation. Segments
// are processed strictly one at a time in ascending order; segment
// order is the concatenation order, so no reordering is permitted.
type PipelineServiceImpl struct {
	config      config.PipelineConfig
	downloadDir string
	extractor   *Extractor
	generator   ports.VideoGeneratorPort
	downloader  ports.VideoDownloaderPort
	progress    ports.ProgressPublisherPort
}

// Ensure PipelineServiceImpl implements PipelineService interface
var _ services.PipelineService = (*PipelineServiceImpl)(nil)

func NewPipelineService(
	cfg config.PipelineConfig,
	downloadDir string,
	generator ports.VideoGeneratorPort,
	downloader ports.VideoDownloaderPort,
	progress ports.ProgressPublisherPort,
) services.PipelineService {
	svc := &PipelineServiceImpl{
		config:      cfg,
		downloadDir: downloadDir,
		extractor:   NewExtractor(),
		generator:   generator,
		downloader:  downloader,
		progress:    progress,
	}

	if svc.config.MaxAttempts <= 0 {
		svc.config.MaxAttempts = 3
	}
	if svc.config.RetryAttempts <= 0 {
		svc.config.RetryAttempts = 3
	}
	if svc.downloadDir == "" {
		svc.downloadDir = "downloads"
	}

	return svc
}

// Run executes the pipeline for every segment of the script. One
// segment's failure never aborts the batch; failures become failed
// records inside the returned BatchResult. Run only errors when the
// script itself has no segments or the context is cancelled.
func (p *PipelineServiceImpl) Run(ctx context.Context, script *models.Script, opts services.PipelineOptions) (*models.BatchResult, error) {
	if script == nil || len(script.Segments) == 0 {
		return nil, services.ErrEmptyScript
	}

	batch := &models.BatchResult{
		ContentTitle:    script.Title,
		TotalSegments:   len(script.Segments),
		VideoURLs:       []string{},
		DownloadedFiles: []string{},
	}

	logger.InfoContext(ctx, "Pipeline run started",
		"title", script.Title,
		"segments", len(script.Segments),
		"generate", opts.Generate,
	)

	for n := 1; n <= len(script.Segments); n++ {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		result := &models.SegmentResult{
			SegmentNumber: n,
			Status:        models.SegmentStatusPending,
		}
		batch.SegmentsResults = append(batch.SegmentsResults, result)

		prompt, err := p.extractor.Extract(script, n)
		if err != nil {
			// extractor failure is contained; move on to the next segment
			result.Status = models.SegmentStatusFailed
			result.Error = err.Error()
			batch.ErrorCount++
			logger.WarnContext(ctx, "Segment extraction failed", "segment", n, "error", err)
			continue
		}

		result.Request = p.buildRequest(script, n, prompt, opts)
		result.Status = models.SegmentStatusProcessing

		if !opts.Generate {
			// dry run: leave the prepared request for inspection
			continue
		}

		if err := p.generateSegment(ctx, batch, result, p.config.MaxAttempts, p.config.AttemptDelay); err != nil {
			return batch, err
		}

		if opts.Download && result.Status == models.SegmentStatusCompleted {
			p.downloadSegment(ctx, batch, result)
		}
	}

	if opts.Generate {
		batch.Message = fmt.Sprintf("generated %d of %d segments", batch.SuccessCount, batch.TotalSegments)
		p.publish(ctx, &ports.SegmentProgress{
			ContentTitle: batch.ContentTitle,
			Event:        ports.BatchEventCompleted,
			SuccessCount: batch.SuccessCount,
			ErrorCount:   batch.ErrorCount,
		})
	} else {
		batch.Message = fmt.Sprintf("prepared %d segments (generation skipped)", batch.TotalSegments)
	}

	logger.InfoContext(ctx, "Pipeline run finished",
		"title", script.Title,
		"success", batch.SuccessCount,
		"failed", batch.ErrorCount,
	)

	return batch, nil
}

// buildRequest assembles the provider request for one segment. The
// segment's own keyframes pass through untouched; roster images ride
// along as reference images, and the client drops them if a seed frame
// is present, since the provider cannot combine both.
func (p *PipelineServiceImpl) buildRequest(script *models.Script, segmentNumber int, prompt *models.SegmentPrompt, opts services.PipelineOptions) *models.VideoRequest {
	req := &models.VideoRequest{
		Prompt:          prompt.Prompt,
		DurationSeconds: prompt.DurationSeconds,
		Resolution:      opts.Resolution,
		AspectRatio:     opts.AspectRatio,
	}

	if seg, found := script.Segment(segmentNumber); found {
		req.FirstFrame = seg.FirstFrame
		req.LastFrame = seg.LastFrame
	}

	if req.Resolution == "" {
		req.Resolution = models.Resolution720p
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "9:16"
	}

	for _, id := range prompt.CharactersPresent {
		profile, found := script.Characters[id]
		if !found || profile.ImageURL == "" {
			continue
		}
		req.ReferenceImages = append(req.ReferenceImages, models.ImageRef{
			URI:      profile.ImageURL,
			MIMEType: "image/png",
		})
	}

	return req
}

// generateSegment runs the single consolidated retry policy for one
// segment: a bounded number of attempts with a fixed delay, retrying
// only on transient provider errors. The generation client keeps its
// own shorter exponential-backoff loop underneath for blips inside a
// single attempt.
func (p *PipelineServiceImpl) generateSegment(ctx context.Context, batch *models.BatchResult, result *models.SegmentResult, maxAttempts int, delay time.Duration) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p.publish(ctx, &ports.SegmentProgress{
			ContentTitle:  batch.ContentTitle,
			SegmentNumber: result.SegmentNumber,
			Event:         ports.SegmentEventStarted,
			Attempt:       attempt,
		})

		urls, err := p.generator.Generate(ctx, result.Request)
		if err == nil && len(urls) > 0 {
			result.Status = models.SegmentStatusCompleted
			result.VideoURL = urls[0]
			result.Error = ""
			result.RetryAttempts = attempt - 1
			batch.VideoURLs = append(batch.VideoURLs, urls[0])
			batch.SuccessCount++

			logger.InfoContext(ctx, "Segment generated",
				"segment", result.SegmentNumber,
				"attempt", attempt,
				"url", urls[0],
			)
			p.publish(ctx, &ports.SegmentProgress{
				ContentTitle:  batch.ContentTitle,
				SegmentNumber: result.SegmentNumber,
				Event:         ports.SegmentEventCompleted,
				VideoURL:      urls[0],
			})
			return nil
		}

		if err == nil {
			err = ports.ErrNoVideoData
		}
		result.RetryAttempts = attempt

		if !ports.IsRetryable(err) || attempt == maxAttempts {
			result.Status = models.SegmentStatusFailed
			result.Error = err.Error()
			batch.ErrorCount++

			logger.WarnContext(ctx, "Segment failed",
				"segment", result.SegmentNumber,
				"attempts", attempt,
				"error", err,
			)
			p.publish(ctx, &ports.SegmentProgress{
				ContentTitle:  batch.ContentTitle,
				SegmentNumber: result.SegmentNumber,
				Event:         ports.SegmentEventFailed,
				Attempt:       attempt,
				Error:         err.Error(),
			})
			return nil
		}

		logger.WarnContext(ctx, "Segment attempt failed, retrying",
			"segment", result.SegmentNumber,
			"attempt", attempt,
			"delay", delay.String(),
			"error", err,
		)
		p.publish(ctx, &ports.SegmentProgress{
			ContentTitle:  batch.ContentTitle,
			SegmentNumber: result.SegmentNumber,
			Event:         ports.SegmentEventRetrying,
			Attempt:       attempt,
			Error:         err.Error(),
		})

		if err := sleepCtx(ctx, delay); err != nil {
			result.Status = models.SegmentStatusFailed
			result.Error = err.Error()
			batch.ErrorCount++
			return err
		}
	}
	return nil
}

// downloadSegment caches a completed segment locally. Generation
// success is independent of local caching: a download failure is
// logged and the segment stays completed.
func (p *PipelineServiceImpl) downloadSegment(ctx context.Context, batch *models.BatchResult, result *models.SegmentResult) {
	filename := fmt.Sprintf("%s_segment_%d.mp4", utils.SanitizeTitle(batch.ContentTitle), result.SegmentNumber)
	destPath := filepath.Join(p.downloadDir, filename)

	path, size, err := p.downloader.Download(ctx, result.VideoURL, destPath)
	if err != nil {
		logger.WarnContext(ctx, "Segment download failed",
			"segment", result.SegmentNumber,
			"url", result.VideoURL,
			"error", err,
		)
		return
	}

	result.DownloadedFile = path
	batch.DownloadedFiles = append(batch.DownloadedFiles, path)
	logger.InfoContext(ctx, "Segment downloaded",
		"segment", result.SegmentNumber,
		"path", path,
		"bytes", size,
	)
}

// Retry re-generates only the failed subset of a previous batch with a
// fresh attempt budget and a longer fixed delay. The BatchResult is
// mutated in place and the same pointer is returned; the caller hands
// over ownership.
func (p *PipelineServiceImpl) Retry(ctx context.Context, previous *models.BatchResult, maxRetries int) (*models.BatchResult, error) {
	if previous == nil {
		return nil, fmt.Errorf("previous result is required")
	}
	if maxRetries <= 0 {
		maxRetries = p.config.RetryAttempts
	}

	failed := previous.FailedSegments()
	if len(failed) == 0 {
		previous.Message = "nothing to retry: no failed segments"
		return previous, nil
	}

	logger.InfoContext(ctx, "Retry round started",
		"title", previous.ContentTitle,
		"failed_segments", len(failed),
		"max_retries", maxRetries,
	)

	recovered := 0
	for _, result := range failed {
		if err := ctx.Err(); err != nil {
			return previous, err
		}

		if result.Request == nil {
			result.RetryError = "no prepared request for segment"
			continue
		}

		if p.retrySegment(ctx, previous, result, maxRetries) {
			recovered++
		}
	}

	stillFailed := len(failed) - recovered
	previous.Message = fmt.Sprintf("retry round complete: %d recovered, %d still failed", recovered, stillFailed)

	logger.InfoContext(ctx, "Retry round finished",
		"title", previous.ContentTitle,
		"recovered", recovered,
		"still_failed", stillFailed,
	)

	return previous, nil
}

// retrySegment runs one failed record through a fresh attempt budget.
// On success the record flips to completed and the batch counts move
// with it; on exhaustion only the retry bookkeeping changes.
func (p *PipelineServiceImpl) retrySegment(ctx context.Context, batch *models.BatchResult, result *models.SegmentResult, maxRetries int) bool {
	for attempt := 1; attempt <= maxRetries; attempt++ {
		p.publish(ctx, &ports.SegmentProgress{
			ContentTitle:  batch.ContentTitle,
			SegmentNumber: result.SegmentNumber,
			Event:         ports.SegmentEventRetrying,
			Attempt:       attempt,
		})

		urls, err := p.generator.Generate(ctx, result.Request)
		if err == nil && len(urls) > 0 {
			result.Status = models.SegmentStatusCompleted
			result.VideoURL = urls[0]
			result.Error = ""
			result.RetrySuccess = true
			result.RetryError = ""
			result.RetryAttempts = attempt
			batch.VideoURLs = append(batch.VideoURLs, urls[0])
			batch.ErrorCount--
			batch.SuccessCount++

			logger.InfoContext(ctx, "Segment recovered on retry",
				"segment", result.SegmentNumber,
				"attempt", attempt,
			)
			p.publish(ctx, &ports.SegmentProgress{
				ContentTitle:  batch.ContentTitle,
				SegmentNumber: result.SegmentNumber,
				Event:         ports.SegmentEventCompleted,
				VideoURL:      urls[0],
			})
			return true
		}

		if err == nil {
			err = ports.ErrNoVideoData
		}
		result.RetryAttempts = attempt
		result.RetryError = err.Error()

		if !ports.IsRetryable(err) || attempt == maxRetries {
			logger.WarnContext(ctx, "Segment retry exhausted",
				"segment", result.SegmentNumber,
				"attempts", attempt,
				"error", err,
			)
			return false
		}

		if err := sleepCtx(ctx, p.config.RetryDelay); err != nil {
			return false
		}
	}
	return false
}

// FailedSegmentsInfo summarizes the failed subset so a caller can
// decide whether a retry round is worth invoking.
func (p *PipelineServiceImpl) FailedSegmentsInfo(batch *models.BatchResult) *models.FailedSegmentsInfo {
	info := &models.FailedSegmentsInfo{FailedSegmentNumbers: []int{}}
	if batch == nil {
		return info
	}
	for _, r := range batch.FailedSegments() {
		info.FailedSegmentNumbers = append(info.FailedSegmentNumbers, r.SegmentNumber)
	}
	info.TotalFailed = len(info.FailedSegmentNumbers)
	info.CanRetry = info.TotalFailed > 0
	return info
}

func (p *PipelineServiceImpl) publish(ctx context.Context, progress *ports.SegmentProgress) {
	if p.progress == nil {
		return
	}
	if err := p.progress.PublishProgress(ctx, progress); err != nil {
		logger.DebugContext(ctx, "Progress publish failed", "event", progress.Event, "error", err)
	}
}

// sleepCtx blocks for d or until the context is cancelled
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
