package services

import (
	"context"

	"clipforge/domain/models"
)

// ContentEntry is one stored piece of content in a listing
type ContentEntry struct {
	ContentType string `json:"content_type"`
	Slug        string `json:"slug"`
	Title       string `json:"title,omitempty"`
}

// StoredContent is a script plus its latest batch result, as persisted
type StoredContent struct {
	Script      *models.Script      `json:"script,omitempty"`
	BatchResult *models.BatchResult `json:"batch_result,omitempty"`
}

// ContentService persists scripts and batch results as JSON under
// <content_type>/<slug>/ in the artifact store.
type ContentService interface {
	SaveScript(ctx context.Context, script *models.Script) (string, error)
	SaveBatchResult(ctx context.Context, contentType models.ContentType, title string, batch *models.BatchResult) error
	ListContent(ctx context.Context) ([]ContentEntry, error)
	GetContent(ctx context.Context, contentType, slug string) (*StoredContent, error)
}
