package ports

import (
	"context"
	"errors"
	"fmt"

	"clipforge/domain/models"
)

// Caller errors. Surfaced immediately, never retried.
var (
	ErrMissingPrompt = errors.New("video request prompt is empty")
	ErrNoVideoData   = errors.New("provider returned no video data")
)

// ErrorKind classifies a provider failure at the boundary so callers
// switch on type instead of matching error text.
type ErrorKind int

const (
	ErrorKindPermanent ErrorKind = iota
	ErrorKindTransient
	ErrorKindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTransient:
		return "transient"
	case ErrorKindRateLimited:
		return "rate_limited"
	default:
		return "permanent"
	}
}

// ProviderError wraps a remote video-generation failure with its
// retry classification.
type ProviderError struct {
	Kind ErrorKind
	Op   string // submit, poll, parse
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a provider failure worth retrying
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == ErrorKindTransient || pe.Kind == ErrorKindRateLimited
	}
	return false
}

// DownloadError reports a segment download that failed after all auth
// strategies were exhausted.
type DownloadError struct {
	URL        string
	Status     int
	StatusText string
	Strategy   string // last auth strategy tried
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed for %s: HTTP %d %s (last strategy: %s)",
		e.URL, e.Status, e.StatusText, e.Strategy)
}

// VideoGeneratorPort submits one request to the remote provider, polls
// the async operation to completion and returns one or more result
// URIs. Transient provider failures are retried internally with
// bounded backoff; classification surfaces as *ProviderError.
type VideoGeneratorPort interface {
	Generate(ctx context.Context, req *models.VideoRequest) ([]string, error)
}

// VideoDownloaderPort fetches a generated video to local disk.
// Returns the written path and byte count.
type VideoDownloaderPort interface {
	Download(ctx context.Context, url, destPath string) (string, int64, error)
}
