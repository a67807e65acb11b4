package videogen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"clipforge/domain/models"
	"clipforge/domain/ports"
	"clipforge/pkg/config"
	"clipforge/pkg/logger"
)

// VeoClient generates segment videos through the Veo API. One Generate
// call submits the async operation, polls it to completion under a
// wall-clock ceiling and retries transient failures with exponential
// backoff.
type VeoClient struct {
	client       *genai.Client
	httpClient   *http.Client
	model        string
	pollInterval time.Duration
	maxPollWait  time.Duration
	maxAttempts  int
	backoffBase  time.Duration

	// provider calls go through these indirections so the retry and
	// poll behavior is testable without a live client
	generateVideos func(ctx context.Context, model, prompt string, image *genai.Image, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	getOperation   func(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// Ensure VeoClient implements VideoGeneratorPort interface
var _ ports.VideoGeneratorPort = (*VeoClient)(nil)

func NewVeoClient(ctx context.Context, cfg config.VideoGenConfig) (*VeoClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &VeoClient{
		client:       client,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		model:        cfg.Model,
		pollInterval: cfg.PollInterval,
		maxPollWait:  cfg.MaxPollWait,
		maxAttempts:  cfg.MaxAttempts,
		backoffBase:  cfg.BackoffBase,
	}

	if c.model == "" {
		c.model = "veo-3.1-generate-preview"
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 10 * time.Second
	}
	if c.maxPollWait <= 0 {
		c.maxPollWait = 10 * time.Minute
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 3
	}
	if c.backoffBase <= 0 {
		c.backoffBase = 5 * time.Second
	}

	c.generateVideos = func(ctx context.Context, model, prompt string, image *genai.Image, cfg *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
		return client.Models.GenerateVideos(ctx, model, prompt, image, cfg)
	}
	c.getOperation = func(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
		return client.Operations.GetVideosOperation(ctx, operation, nil)
	}

	return c, nil
}

// GenAI exposes the underlying client so the thumbnail generator can
// share one connection and API key.
func (c *VeoClient) GenAI() *genai.Client {
	return c.client
}

// Generate submits one video request and returns the result URIs.
// Transient failures are retried up to the attempt budget with
// exponential backoff; permanent failures surface immediately.
func (c *VeoClient) Generate(ctx context.Context, req *models.VideoRequest) ([]string, error) {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return nil, ports.ErrMissingPrompt
	}

	c.materialize(ctx, req)
	seed, last, refs := resolveImages(req)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoffBase * (1 << (attempt - 1))
			logger.WarnContext(ctx, "Generation attempt failed, backing off",
				"attempt", attempt,
				"delay", delay.String(),
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, classify("submit", ctx.Err())
			case <-time.After(delay):
			}
		}

		urls, err := c.generateOnce(ctx, req, seed, last, refs)
		if err == nil {
			return urls, nil
		}
		lastErr = err
		if !ports.IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *VeoClient) generateOnce(ctx context.Context, req *models.VideoRequest, seed, last *genai.Image, refs []*genai.Image) ([]string, error) {
	genCfg := &genai.GenerateVideosConfig{
		AspectRatio:      req.AspectRatio,
		Resolution:       req.Resolution.ProviderValue(),
		NumberOfVideos:   1,
		PersonGeneration: "allow_adult",
	}
	if req.DurationSeconds > 0 {
		genCfg.DurationSeconds = genai.Ptr[int32](int32(req.DurationSeconds))
	}
	if last != nil {
		genCfg.LastFrame = last
	}
	// reference images only ride along without a seed frame; the
	// provider rejects calls combining both
	if seed == nil {
		for _, ref := range refs {
			genCfg.ReferenceImages = append(genCfg.ReferenceImages, &genai.VideoGenerationReferenceImage{
				Image:         ref,
				ReferenceType: "asset",
			})
		}
	}

	operation, err := c.generateVideos(ctx, c.model, req.Prompt, seed, genCfg)
	if err != nil {
		return nil, classify("submit", err)
	}

	logger.InfoContext(ctx, "Video operation started", "operation", operation.Name, "model", c.model)

	operation, err = c.poll(ctx, operation)
	if err != nil {
		return nil, err
	}

	return parseResults(operation)
}

// poll waits for the operation under the configured wall-clock ceiling
func (c *VeoClient) poll(ctx context.Context, operation *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	deadline := time.Now().Add(c.maxPollWait)
	polls := 0

	for !operation.Done {
		if time.Now().After(deadline) {
			return nil, classify("poll", fmt.Errorf("operation timed out after %v (%d polls)", c.maxPollWait, polls))
		}

		select {
		case <-ctx.Done():
			return nil, &ports.ProviderError{Kind: ports.ErrorKindPermanent, Op: "poll", Err: ctx.Err()}
		case <-time.After(c.pollInterval):
		}

		polls++
		var err error
		operation, err = c.getOperation(ctx, operation)
		if err != nil {
			return nil, classify("poll", err)
		}
	}

	if len(operation.Error) > 0 {
		errJSON, _ := json.Marshal(operation.Error)
		return nil, &ports.ProviderError{
			Kind: classifyText(string(errJSON)),
			Op:   "poll",
			Err:  fmt.Errorf("operation failed: %s", string(errJSON)),
		}
	}

	return operation, nil
}

// parseResults extracts video URIs from a completed operation. The
// response surfaces results under more than one field; as a last
// resort a non-empty raw response is stringified before giving up.
func parseResults(operation *genai.GenerateVideosOperation) ([]string, error) {
	if operation.Response == nil {
		return nil, &ports.ProviderError{Kind: ports.ErrorKindPermanent, Op: "parse", Err: ports.ErrNoVideoData}
	}

	if operation.Response.RAIMediaFilteredCount > 0 {
		reasons := "unknown"
		if len(operation.Response.RAIMediaFilteredReasons) > 0 {
			reasons = strings.Join(operation.Response.RAIMediaFilteredReasons, ", ")
		}
		return nil, &ports.ProviderError{
			Kind: ports.ErrorKindPermanent,
			Op:   "parse",
			Err:  fmt.Errorf("video blocked by safety filters: %s", reasons),
		}
	}

	var urls []string
	for _, v := range operation.Response.GeneratedVideos {
		if v.Video == nil {
			continue
		}
		if v.Video.URI != "" {
			urls = append(urls, v.Video.URI)
		}
	}
	if len(urls) > 0 {
		return urls, nil
	}

	// last resort: a non-empty raw response stands in for a URI
	raw, _ := json.Marshal(operation.Response)
	if len(raw) > 0 && string(raw) != "{}" && string(raw) != "null" {
		return []string{string(raw)}, nil
	}

	return nil, &ports.ProviderError{Kind: ports.ErrorKindPermanent, Op: "parse", Err: ports.ErrNoVideoData}
}

// resolveImages applies the keyframe precedence rule: a seed frame
// wins and clears reference images. This is correctness critical; the
// provider cannot combine a seed image with reference images.
func resolveImages(req *models.VideoRequest) (seed, last *genai.Image, refs []*genai.Image) {
	seed = toImage(req.FirstFrame)
	last = toImage(req.LastFrame)
	if seed != nil {
		return seed, last, nil
	}
	for i := range req.ReferenceImages {
		if img := toImage(&req.ReferenceImages[i]); img != nil {
			refs = append(refs, img)
		}
	}
	return seed, last, refs
}

func toImage(ref *models.ImageRef) *genai.Image {
	if ref.IsZero() {
		return nil
	}
	mime := ref.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	if len(ref.Bytes) > 0 {
		return &genai.Image{ImageBytes: ref.Bytes, MIMEType: mime}
	}
	return &genai.Image{GCSURI: ref.URI, MIMEType: mime}
}

// materialize fetches http(s) image refs into inline bytes; the
// provider accepts only bytes or gs:// URIs. A failed fetch is logged
// and the ref left as-is.
func (c *VeoClient) materialize(ctx context.Context, req *models.VideoRequest) {
	refs := []*models.ImageRef{req.FirstFrame, req.LastFrame}
	for i := range req.ReferenceImages {
		refs = append(refs, &req.ReferenceImages[i])
	}
	for _, ref := range refs {
		if ref.IsZero() || len(ref.Bytes) > 0 || !strings.HasPrefix(ref.URI, "http") {
			continue
		}
		fetched, err := FetchImageBytes(ctx, c.httpClient, ref.URI)
		if err != nil {
			logger.WarnContext(ctx, "Failed to fetch image reference", "uri", ref.URI, "error", err)
			continue
		}
		ref.Bytes = fetched.Bytes
		if ref.MIMEType == "" {
			ref.MIMEType = fetched.MIMEType
		}
	}
}

// FetchImageBytes loads an http(s) image into an in-memory ref, for
// callers that hold only a public URL.
func FetchImageBytes(ctx context.Context, httpClient *http.Client, url string) (*models.ImageRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return &models.ImageRef{Bytes: data, MIMEType: mime}, nil
}
