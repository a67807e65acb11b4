package videogen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"clipforge/domain/ports"
	"clipforge/pkg/config"
	"clipforge/pkg/logger"
)

// authStrategy names one way of authenticating a video file download.
// Result URIs come back in more than one shape and each shape expects
// different credentials, so strategies are tried in order.
type authStrategy struct {
	name  string
	apply func(req *http.Request)
}

// Downloader fetches generated video files over HTTP. Each auth
// strategy gets its own transient-retry budget before the next one is
// tried; only after all strategies are exhausted does the download
// fail.
type Downloader struct {
	httpClient  *http.Client
	apiKey      string
	maxAttempts int
	backoffBase time.Duration
}

// Ensure Downloader implements VideoDownloaderPort interface
var _ ports.VideoDownloaderPort = (*Downloader)(nil)

func NewDownloader(cfg config.VideoGenConfig) *Downloader {
	d := &Downloader{
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
		apiKey:      cfg.APIKey,
		maxAttempts: cfg.DownloadRetry,
		backoffBase: cfg.DownloadBase,
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = 3
	}
	if d.backoffBase <= 0 {
		d.backoffBase = 3 * time.Second
	}
	return d
}

func (d *Downloader) strategies() []authStrategy {
	var out []authStrategy
	if d.apiKey != "" {
		out = append(out,
			authStrategy{name: "bearer", apply: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+d.apiKey)
			}},
			authStrategy{name: "api_key_header", apply: func(req *http.Request) {
				req.Header.Set("X-Goog-Api-Key", d.apiKey)
			}},
		)
	}
	out = append(out, authStrategy{name: "none", apply: func(req *http.Request) {}})
	return out
}

// Download fetches url into destPath, creating parent directories as
// needed. Returns the written path and its size in bytes.
func (d *Downloader) Download(ctx context.Context, url string, destPath string) (string, int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create download directory: %w", err)
	}

	var lastErr error
	for _, strategy := range d.strategies() {
		size, err := d.tryStrategy(ctx, url, destPath, strategy)
		if err == nil {
			logger.InfoContext(ctx, "Video downloaded",
				"path", destPath,
				"size", size,
				"auth", strategy.name,
			)
			return destPath, size, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", 0, lastErr
		}
		logger.DebugContext(ctx, "Download strategy failed", "auth", strategy.name, "error", err)
	}

	return "", 0, lastErr
}

// tryStrategy runs one auth strategy with its transient-retry budget
func (d *Downloader) tryStrategy(ctx context.Context, url, destPath string, strategy authStrategy) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := d.backoffBase * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}
		}

		size, retryable, err := d.fetch(ctx, url, destPath, strategy)
		if err == nil {
			return size, nil
		}
		lastErr = err
		if !retryable {
			return 0, err
		}
	}
	return 0, lastErr
}

// fetch performs a single HTTP attempt and streams the body to disk
func (d *Downloader) fetch(ctx context.Context, url, destPath string, strategy authStrategy) (int64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false, err
	}
	strategy.apply(req)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		dlErr := &ports.DownloadError{
			URL:        url,
			Status:     resp.StatusCode,
			StatusText: resp.Status,
			Strategy:   strategy.name,
		}
		return 0, isRetryableStatus(resp.StatusCode), dlErr
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, true, fmt.Errorf("failed to write video file: %w", err)
	}

	return size, false, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
