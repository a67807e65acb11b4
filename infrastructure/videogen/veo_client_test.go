package videogen

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"clipforge/domain/models"
	"clipforge/domain/ports"
)

func TestResolveImagesSeedFrameWins(t *testing.T) {
	req := &models.VideoRequest{
		Prompt:     "a keeper climbs the lighthouse stairs",
		FirstFrame: &models.ImageRef{Bytes: []byte{0x89, 0x50}, MIMEType: "image/png"},
		LastFrame:  &models.ImageRef{URI: "gs://bucket/last.png"},
		ReferenceImages: []models.ImageRef{
			{URI: "gs://bucket/char1.png"},
			{URI: "gs://bucket/char2.png"},
		},
	}

	seed, last, refs := resolveImages(req)
	if seed == nil {
		t.Fatal("seed frame must be resolved")
	}
	if len(seed.ImageBytes) == 0 {
		t.Error("inline bytes must be carried on the seed image")
	}
	if last == nil || last.GCSURI != "gs://bucket/last.png" {
		t.Errorf("last frame = %+v, want gs://bucket/last.png", last)
	}
	if len(refs) != 0 {
		t.Errorf("refs = %d, want none when a seed frame is present", len(refs))
	}
}

func TestResolveImagesReferencesWithoutSeed(t *testing.T) {
	req := &models.VideoRequest{
		Prompt: "two characters argue on a pier",
		ReferenceImages: []models.ImageRef{
			{URI: "gs://bucket/char1.png"},
			{}, // empty refs are skipped
			{URI: "https://cdn.example.com/char2.png"},
		},
	}

	seed, _, refs := resolveImages(req)
	if seed != nil {
		t.Fatal("no seed frame was given")
	}
	if len(refs) != 2 {
		t.Fatalf("refs = %d, want 2", len(refs))
	}
	if refs[0].GCSURI != "gs://bucket/char1.png" {
		t.Errorf("refs[0] = %+v, want the gs:// reference first", refs[0])
	}
}

func TestPollDeadlineSurfacesTransient(t *testing.T) {
	c := &VeoClient{
		pollInterval: time.Millisecond,
		maxPollWait:  5 * time.Millisecond,
		getOperation: func(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
			return operation, nil // never completes
		},
	}

	_, err := c.poll(context.Background(), &genai.GenerateVideosOperation{})
	if err == nil {
		t.Fatal("poll must fail once the wall-clock ceiling is exceeded")
	}

	var pe *ports.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ports.ProviderError", err)
	}
	if pe.Op != "poll" {
		t.Errorf("Op = %q, want poll", pe.Op)
	}
	if pe.Kind != ports.ErrorKindTransient {
		t.Errorf("Kind = %v, want transient", pe.Kind)
	}
	if !ports.IsRetryable(err) {
		t.Error("a timed-out operation must be retryable")
	}
}

func TestPollClassifiesOperationError(t *testing.T) {
	c := &VeoClient{
		pollInterval: time.Millisecond,
		maxPollWait:  time.Second,
		getOperation: func(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
			return &genai.GenerateVideosOperation{
				Done:  true,
				Error: map[string]any{"code": 8, "message": "RESOURCE_EXHAUSTED: quota exceeded"},
			}, nil
		},
	}

	_, err := c.poll(context.Background(), &genai.GenerateVideosOperation{})
	var pe *ports.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ports.ProviderError", err)
	}
	if pe.Kind != ports.ErrorKindRateLimited {
		t.Errorf("Kind = %v, want rate_limited", pe.Kind)
	}
}

func TestGenerateRetriesTransientSubmitFailures(t *testing.T) {
	calls := 0
	c := &VeoClient{
		model:        "veo-test",
		pollInterval: time.Millisecond,
		maxPollWait:  time.Second,
		maxAttempts:  3,
		backoffBase:  time.Millisecond,
		generateVideos: func(ctx context.Context, model, prompt string, image *genai.Image, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("503 service unavailable")
			}
			return &genai.GenerateVideosOperation{
				Done: true,
				Response: &genai.GenerateVideosResponse{
					GeneratedVideos: []*genai.GeneratedVideo{
						{Video: &genai.Video{URI: "https://videos.example.com/seg1.mp4"}},
					},
				},
			}, nil
		},
	}

	urls, err := c.Generate(context.Background(), &models.VideoRequest{Prompt: "a keeper lights the lamp"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("submit calls = %d, want 3 (two transient failures then success)", calls)
	}
	if len(urls) != 1 || urls[0] != "https://videos.example.com/seg1.mp4" {
		t.Errorf("urls = %v, want the completed operation's URI", urls)
	}
}

func TestGeneratePermanentFailureStopsImmediately(t *testing.T) {
	calls := 0
	c := &VeoClient{
		model:        "veo-test",
		pollInterval: time.Millisecond,
		maxPollWait:  time.Second,
		maxAttempts:  3,
		backoffBase:  time.Millisecond,
		generateVideos: func(ctx context.Context, model, prompt string, image *genai.Image, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
			calls++
			return nil, errors.New("invalid argument: unsupported aspect ratio")
		},
	}

	_, err := c.Generate(context.Background(), &models.VideoRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Generate must fail")
	}
	if ports.IsRetryable(err) {
		t.Error("an invalid-argument failure must classify permanent")
	}
	if calls != 1 {
		t.Errorf("submit calls = %d, want 1 (no retry on permanent)", calls)
	}
}

func TestToImageDefaultsMIMEType(t *testing.T) {
	img := toImage(&models.ImageRef{Bytes: []byte{1, 2, 3}})
	if img == nil {
		t.Fatal("toImage returned nil for a non-empty ref")
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png default", img.MIMEType)
	}
}
