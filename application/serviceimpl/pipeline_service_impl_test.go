package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"clipforge/domain/models"
	"clipforge/domain/ports"
	"clipforge/domain/services"
	"clipforge/pkg/config"
)

// fakeGenerator scripts per-call outcomes for the pipeline tests
type fakeGenerator struct {
	calls int
	fn    func(call int, req *models.VideoRequest) ([]string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req *models.VideoRequest) ([]string, error) {
	f.calls++
	return f.fn(f.calls, req)
}

type fakeDownloader struct {
	calls []string
	err   error
}

func (f *fakeDownloader) Download(ctx context.Context, url, destPath string) (string, int64, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return "", 0, f.err
	}
	return destPath, 1024, nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishProgress(ctx context.Context, p *ports.SegmentProgress) error {
	f.events = append(f.events, p.Event)
	return nil
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		MaxAttempts:   3,
		AttemptDelay:  0,
		RetryAttempts: 3,
		RetryDelay:    0,
	}
}

func newTestPipeline(gen *fakeGenerator, dl *fakeDownloader) services.PipelineService {
	if dl == nil {
		dl = &fakeDownloader{}
	}
	return NewPipelineService(testPipelineConfig(), "downloads", gen, dl, &fakePublisher{})
}

func transientErr() error {
	return &ports.ProviderError{Kind: ports.ErrorKindTransient, Op: "submit", Err: errors.New("model is overloaded")}
}

func permanentErr() error {
	return &ports.ProviderError{Kind: ports.ErrorKindPermanent, Op: "submit", Err: errors.New("invalid reference image")}
}

func TestRunPreservesSegmentOrder(t *testing.T) {
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		return []string{fmt.Sprintf("https://cdn.example.com/video_%d.mp4", call)}, nil
	}}
	svc := newTestPipeline(gen, nil)

	batch, err := svc.Run(context.Background(), storyScript(), services.PipelineOptions{Generate: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if batch.SuccessCount != 3 || batch.ErrorCount != 0 {
		t.Fatalf("counts = %d/%d, want 3/0", batch.SuccessCount, batch.ErrorCount)
	}
	if len(batch.VideoURLs) != 3 {
		t.Fatalf("VideoURLs = %v, want 3 entries", batch.VideoURLs)
	}
	// completion order must equal segment order
	for i, r := range batch.SegmentsResults {
		if r.SegmentNumber != i+1 {
			t.Errorf("segment %d out of order: got number %d", i+1, r.SegmentNumber)
		}
		if r.Status != models.SegmentStatusCompleted {
			t.Errorf("segment %d status = %s, want completed", r.SegmentNumber, r.Status)
		}
		if batch.VideoURLs[i] != r.VideoURL {
			t.Errorf("VideoURLs[%d] = %s, want %s", i, batch.VideoURLs[i], r.VideoURL)
		}
	}
}

func TestRunContainsPermanentFailure(t *testing.T) {
	// segment 2 always fails permanently; permanent errors get no retry,
	// so the generator sees exactly one call per segment
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		if call == 2 {
			return nil, permanentErr()
		}
		return []string{fmt.Sprintf("https://cdn.example.com/video_%d.mp4", call)}, nil
	}}
	svc := newTestPipeline(gen, nil)

	batch, err := svc.Run(context.Background(), storyScript(), services.PipelineOptions{Generate: true})
	if err != nil {
		t.Fatalf("Run() must not error on per-segment failure, got %v", err)
	}

	if batch.SuccessCount != 2 || batch.ErrorCount != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", batch.SuccessCount, batch.ErrorCount)
	}
	if gen.calls != 3 {
		t.Errorf("generator calls = %d, want 3 (no retry on permanent)", gen.calls)
	}

	failed := batch.FindSegment(2)
	if failed.Status != models.SegmentStatusFailed {
		t.Errorf("segment 2 status = %s, want failed", failed.Status)
	}
	if failed.Error == "" {
		t.Error("segment 2 must record the provider error")
	}
	for _, n := range []int{1, 3} {
		if batch.FindSegment(n).Status != models.SegmentStatusCompleted {
			t.Errorf("segment %d must still complete", n)
		}
	}
	if len(batch.VideoURLs) != 2 {
		t.Errorf("VideoURLs = %v, want the 2 completed urls", batch.VideoURLs)
	}
}

func TestRunRetriesTransientErrors(t *testing.T) {
	// first attempt of segment 1 fails transiently, second succeeds
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		if call == 1 {
			return nil, transientErr()
		}
		return []string{fmt.Sprintf("https://cdn.example.com/video_%d.mp4", call)}, nil
	}}
	svc := newTestPipeline(gen, nil)

	batch, err := svc.Run(context.Background(), storyScript(), services.PipelineOptions{Generate: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if batch.SuccessCount != 3 {
		t.Fatalf("SuccessCount = %d, want 3", batch.SuccessCount)
	}
	if got := batch.FindSegment(1).RetryAttempts; got != 1 {
		t.Errorf("segment 1 RetryAttempts = %d, want 1", got)
	}
}

func TestRunExhaustsTransientRetries(t *testing.T) {
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		return nil, transientErr()
	}}
	script := &models.Script{
		Title:       "One Segment",
		ContentType: models.ContentTypeStory,
		Segments:    []models.Segment{{SegmentNumber: 1, Scene: "a scene", Narration: "words", DurationSeconds: 8}},
	}
	svc := newTestPipeline(gen, nil)

	batch, err := svc.Run(context.Background(), script, services.PipelineOptions{Generate: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if gen.calls != 3 {
		t.Errorf("generator calls = %d, want 3 attempts", gen.calls)
	}
	r := batch.FindSegment(1)
	if r.Status != models.SegmentStatusFailed || r.RetryAttempts != 3 {
		t.Errorf("segment = %s/%d attempts, want failed/3", r.Status, r.RetryAttempts)
	}
}

func TestRunDryRunSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		t.Fatal("generator must not be called in dry-run mode")
		return nil, nil
	}}
	svc := newTestPipeline(gen, nil)

	batch, err := svc.Run(context.Background(), storyScript(), services.PipelineOptions{Generate: false})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, r := range batch.SegmentsResults {
		if r.Status != models.SegmentStatusProcessing {
			t.Errorf("segment %d status = %s, want processing", r.SegmentNumber, r.Status)
		}
		if r.Request == nil || r.Request.Prompt == "" {
			t.Errorf("segment %d must carry the prepared request", r.SegmentNumber)
		}
	}
	if batch.SuccessCount != 0 || batch.ErrorCount != 0 {
		t.Errorf("dry run must not touch counts, got %d/%d", batch.SuccessCount, batch.ErrorCount)
	}
}

// Keyframes chain segments visually: segment 2 opens on segment 1's
// closing frame. The prepared request must carry them through next to
// the roster reference images.
func TestRunCarriesSegmentKeyframes(t *testing.T) {
	script := storyScript()
	script.Segments[0].LastFrame = &models.ImageRef{URI: "https://cdn.example.com/seg1_closing.png"}
	script.Segments[1].FirstFrame = &models.ImageRef{URI: "https://cdn.example.com/seg1_closing.png"}

	svc := newTestPipeline(&fakeGenerator{}, nil)
	batch, err := svc.Run(context.Background(), script, services.PipelineOptions{Generate: false})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	req1 := batch.FindSegment(1).Request
	if req1.FirstFrame != nil {
		t.Errorf("segment 1 FirstFrame = %+v, want none", req1.FirstFrame)
	}
	if req1.LastFrame == nil || req1.LastFrame.URI != "https://cdn.example.com/seg1_closing.png" {
		t.Errorf("segment 1 LastFrame = %+v, want the closing keyframe", req1.LastFrame)
	}
	if len(req1.ReferenceImages) != 1 {
		t.Errorf("segment 1 refs = %v, want the roster image", req1.ReferenceImages)
	}

	req2 := batch.FindSegment(2).Request
	if req2.FirstFrame == nil || req2.FirstFrame.URI != "https://cdn.example.com/seg1_closing.png" {
		t.Errorf("segment 2 FirstFrame = %+v, want segment 1's closing frame", req2.FirstFrame)
	}
}

func TestRunEmptyScript(t *testing.T) {
	svc := newTestPipeline(&fakeGenerator{}, nil)

	_, err := svc.Run(context.Background(), &models.Script{Title: "empty"}, services.PipelineOptions{Generate: true})
	if !errors.Is(err, services.ErrEmptyScript) {
		t.Errorf("error = %v, want ErrEmptyScript", err)
	}
}

// Segment 2's narration is empty: the placeholder prompt must still
// drive a fully successful run.
func TestRunPlaceholderSegmentScenario(t *testing.T) {
	script := storyScript()
	seg, _ := script.Segment(2)
	seg.Dialogue = nil
	seg.Scene = ""

	var segment2Prompt string
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		if call == 2 {
			segment2Prompt = req.Prompt
		}
		return []string{fmt.Sprintf("https://cdn.example.com/video_%d.mp4", call)}, nil
	}}
	svc := newTestPipeline(gen, nil)

	batch, err := svc.Run(context.Background(), script, services.PipelineOptions{Generate: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if batch.TotalSegments != 3 || batch.SuccessCount != 3 || batch.ErrorCount != 0 {
		t.Fatalf("batch = %d total %d/%d, want 3 total 3/0",
			batch.TotalSegments, batch.SuccessCount, batch.ErrorCount)
	}
	if len(batch.VideoURLs) != 3 {
		t.Fatalf("VideoURLs = %v, want 3 entries", batch.VideoURLs)
	}
	if !strings.Contains(segment2Prompt, "segment 2") {
		t.Errorf("segment 2 prompt must contain the placeholder, got: %s", segment2Prompt)
	}
}

func TestRunDownloadFailureKeepsSegmentCompleted(t *testing.T) {
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		return []string{fmt.Sprintf("https://cdn.example.com/video_%d.mp4", call)}, nil
	}}
	dl := &fakeDownloader{err: errors.New("connection reset")}
	svc := newTestPipeline(gen, dl)

	batch, err := svc.Run(context.Background(), storyScript(), services.PipelineOptions{Generate: true, Download: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(dl.calls) != 3 {
		t.Errorf("downloader calls = %d, want 3", len(dl.calls))
	}
	if batch.SuccessCount != 3 || batch.ErrorCount != 0 {
		t.Errorf("download failure must not affect counts, got %d/%d", batch.SuccessCount, batch.ErrorCount)
	}
	if len(batch.DownloadedFiles) != 0 {
		t.Errorf("DownloadedFiles = %v, want empty on download failure", batch.DownloadedFiles)
	}
}

// ========== Retry coordinator ==========

func failedBatch(failedNumbers ...int) *models.BatchResult {
	batch := &models.BatchResult{
		ContentTitle:  "The Lighthouse Keeper",
		TotalSegments: 5,
		VideoURLs:     []string{},
	}
	failedSet := map[int]bool{}
	for _, n := range failedNumbers {
		failedSet[n] = true
	}
	for n := 1; n <= 5; n++ {
		r := &models.SegmentResult{
			SegmentNumber: n,
			Request:       &models.VideoRequest{Prompt: fmt.Sprintf("prompt %d", n), DurationSeconds: 8},
		}
		if failedSet[n] {
			r.Status = models.SegmentStatusFailed
			r.Error = "model is overloaded"
			batch.ErrorCount++
		} else {
			r.Status = models.SegmentStatusCompleted
			r.VideoURL = fmt.Sprintf("https://cdn.example.com/video_%d.mp4", n)
			batch.VideoURLs = append(batch.VideoURLs, r.VideoURL)
			batch.SuccessCount++
		}
		batch.SegmentsResults = append(batch.SegmentsResults, r)
	}
	return batch
}

func TestRetryNothingToRetryIsIdempotent(t *testing.T) {
	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		t.Fatal("generator must not be called with nothing to retry")
		return nil, nil
	}}
	svc := newTestPipeline(gen, nil)
	batch := failedBatch() // all completed

	for i := 0; i < 2; i++ {
		got, err := svc.Retry(context.Background(), batch, 3)
		if err != nil {
			t.Fatalf("Retry() error = %v", err)
		}
		if got != batch {
			t.Fatal("Retry must return the same BatchResult pointer")
		}
		if !strings.Contains(got.Message, "nothing to retry") {
			t.Errorf("Message = %q, want nothing-to-retry notice", got.Message)
		}
		if got.SuccessCount != 5 || got.ErrorCount != 0 {
			t.Errorf("counts changed: %d/%d", got.SuccessCount, got.ErrorCount)
		}
	}
}

func TestRetryConvergence(t *testing.T) {
	batch := failedBatch(2, 5)
	urlsBefore := append([]string(nil), batch.VideoURLs...)

	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		return []string{fmt.Sprintf("https://cdn.example.com/retry_%d.mp4", call)}, nil
	}}
	svc := newTestPipeline(gen, nil)

	got, err := svc.Retry(context.Background(), batch, 3)
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}

	if got.ErrorCount != 0 || got.SuccessCount != 5 {
		t.Fatalf("counts = %d/%d, want 5/0", got.SuccessCount, got.ErrorCount)
	}
	// previously successful entries keep their order; recovered urls append
	if len(got.VideoURLs) != 5 {
		t.Fatalf("VideoURLs = %v, want 5 entries", got.VideoURLs)
	}
	for i, url := range urlsBefore {
		if got.VideoURLs[i] != url {
			t.Errorf("VideoURLs[%d] reordered: got %s, want %s", i, got.VideoURLs[i], url)
		}
	}
	for _, n := range []int{2, 5} {
		r := got.FindSegment(n)
		if r.Status != models.SegmentStatusCompleted || !r.RetrySuccess {
			t.Errorf("segment %d = %s retry_success=%v, want completed/true", n, r.Status, r.RetrySuccess)
		}
	}
}

func TestRetryRepeatedFailureKeepsCounts(t *testing.T) {
	batch := failedBatch(3)

	gen := &fakeGenerator{fn: func(call int, req *models.VideoRequest) ([]string, error) {
		return nil, permanentErr()
	}}
	svc := newTestPipeline(gen, nil)

	got, err := svc.Retry(context.Background(), batch, 3)
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}

	if got.SuccessCount != 4 || got.ErrorCount != 1 {
		t.Errorf("counts = %d/%d, want 4/1 unchanged", got.SuccessCount, got.ErrorCount)
	}
	r := got.FindSegment(3)
	if r.Status != models.SegmentStatusFailed {
		t.Errorf("segment 3 status = %s, want failed", r.Status)
	}
	if r.RetryError == "" || r.RetryAttempts != 1 {
		t.Errorf("retry bookkeeping = %q/%d, want error recorded after 1 attempt", r.RetryError, r.RetryAttempts)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1 (no retry on permanent)", gen.calls)
	}
}

func TestFailedSegmentsInfo(t *testing.T) {
	svc := newTestPipeline(&fakeGenerator{}, nil)

	tests := []struct {
		name     string
		batch    *models.BatchResult
		want     []int
		canRetry bool
	}{
		{"two failed", failedBatch(2, 5), []int{2, 5}, true},
		{"none failed", failedBatch(), []int{}, false},
		{"nil batch", nil, []int{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := svc.FailedSegmentsInfo(tt.batch)
			if info.TotalFailed != len(tt.want) || info.CanRetry != tt.canRetry {
				t.Errorf("info = %+v, want %d failed, can_retry=%v", info, len(tt.want), tt.canRetry)
			}
			for i, n := range tt.want {
				if info.FailedSegmentNumbers[i] != n {
					t.Errorf("FailedSegmentNumbers = %v, want %v", info.FailedSegmentNumbers, tt.want)
				}
			}
		})
	}
}
