package serviceimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"clipforge/domain/models"
	"clipforge/domain/ports"
	"clipforge/domain/services"
	"clipforge/pkg/logger"
	"clipforge/pkg/utils"
)

const (
	scriptFileName = "script.json"
	batchFileName  = "batch_result.json"
)

// ContentServiceImpl persists scripts and batch results as JSON under
// generated_content/<content_type>/<slug>/ in the artifact store.
type ContentServiceImpl struct {
	store   ports.ArtifactStorePort
	baseDir string
}

// Ensure ContentServiceImpl implements ContentService interface
var _ services.ContentService = (*ContentServiceImpl)(nil)

func NewContentService(store ports.ArtifactStorePort, baseDir string) services.ContentService {
	if baseDir == "" {
		baseDir = "generated_content"
	}
	return &ContentServiceImpl{
		store:   store,
		baseDir: baseDir,
	}
}

func (c *ContentServiceImpl) SaveScript(ctx context.Context, script *models.Script) (string, error) {
	if script == nil || script.Title == "" {
		return "", fmt.Errorf("script with a title is required")
	}

	data, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal script: %w", err)
	}

	storagePath := c.contentFile(string(script.ContentType), script.Title, scriptFileName)
	url, err := c.store.Save(bytes.NewReader(data), storagePath, "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to save script: %w", err)
	}

	logger.InfoContext(ctx, "Script saved", "path", storagePath)
	return url, nil
}

func (c *ContentServiceImpl) SaveBatchResult(ctx context.Context, contentType models.ContentType, title string, batch *models.BatchResult) error {
	if batch == nil {
		return fmt.Errorf("batch result is required")
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch result: %w", err)
	}

	storagePath := c.contentFile(string(contentType), title, batchFileName)
	if _, err := c.store.Save(bytes.NewReader(data), storagePath, "application/json"); err != nil {
		return fmt.Errorf("failed to save batch result: %w", err)
	}

	logger.InfoContext(ctx, "Batch result saved", "path", storagePath)
	return nil
}

func (c *ContentServiceImpl) ListContent(ctx context.Context) ([]services.ContentEntry, error) {
	files, err := c.store.ListFiles(c.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}

	seen := map[string]bool{}
	var entries []services.ContentEntry
	for _, f := range files {
		rel := strings.TrimPrefix(strings.TrimPrefix(f, c.baseDir), "/")
		parts := strings.Split(path.Clean(rel), "/")
		if len(parts) < 3 {
			continue // not a <type>/<slug>/<file> path
		}
		key := parts[0] + "/" + parts[1]
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, services.ContentEntry{
			ContentType: parts[0],
			Slug:        parts[1],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ContentType != entries[j].ContentType {
			return entries[i].ContentType < entries[j].ContentType
		}
		return entries[i].Slug < entries[j].Slug
	})

	return entries, nil
}

func (c *ContentServiceImpl) GetContent(ctx context.Context, contentType, slug string) (*services.StoredContent, error) {
	dir := path.Join(c.baseDir, contentType, slug)

	content := &services.StoredContent{}
	found := false

	var script models.Script
	if err := c.readJSON(path.Join(dir, scriptFileName), &script); err == nil {
		content.Script = &script
		if content.Script.Title != "" {
			found = true
		}
	}

	var batch models.BatchResult
	if err := c.readJSON(path.Join(dir, batchFileName), &batch); err == nil {
		content.BatchResult = &batch
		found = true
	}

	if !found {
		return nil, fmt.Errorf("%w: %s/%s", services.ErrContentNotFound, contentType, slug)
	}
	return content, nil
}

func (c *ContentServiceImpl) contentFile(contentType, title, filename string) string {
	return path.Join(c.baseDir, utils.ContentPath(contentType, title), filename)
}

func (c *ContentServiceImpl) readJSON(storagePath string, v any) error {
	rc, _, err := c.store.GetFileContent(storagePath)
	if err != nil {
		return err
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(v)
}
