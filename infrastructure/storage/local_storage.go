package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"clipforge/domain/ports"
)

// LocalStorage implements ArtifactStorePort on the local filesystem
type LocalStorage struct {
	basePath string // root directory for stored artifacts (e.g. ./data)
	baseURL  string // URL prefix for serving files (e.g. http://localhost:8080/files)
}

type LocalStorageConfig struct {
	BasePath string
	BaseURL  string
}

// Ensure LocalStorage implements ArtifactStorePort interface
var _ ports.ArtifactStorePort = (*LocalStorage)(nil)

func NewLocalStorage(config LocalStorageConfig) (ports.ArtifactStorePort, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: config.BasePath,
		baseURL:  strings.TrimSuffix(config.BaseURL, "/"),
	}, nil
}

// Save writes the artifact under basePath and returns its URL
func (l *LocalStorage) Save(file io.Reader, path string, contentType string) (string, error) {
	path = strings.ReplaceAll(path, "\\", "/")
	fullPath := filepath.Join(l.basePath, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return l.GetFileURL(path), nil
}

// Delete removes an artifact. A missing file is not an error.
func (l *LocalStorage) Delete(path string) error {
	path = strings.ReplaceAll(path, "\\", "/")
	fullPath := filepath.Join(l.basePath, path)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	l.cleanupEmptyDirs(filepath.Dir(fullPath))
	return nil
}

func (l *LocalStorage) GetFileURL(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return l.baseURL + path
}

func (l *LocalStorage) GetFileContent(path string) (io.ReadCloser, string, error) {
	path = strings.ReplaceAll(path, "\\", "/")
	fullPath := filepath.Join(l.basePath, path)

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	return file, contentTypeFor(path), nil
}

// ListFiles lists all files under prefix, relative to basePath
func (l *LocalStorage) ListFiles(prefix string) ([]string, error) {
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = strings.TrimPrefix(prefix, "/")
	fullPath := filepath.Join(l.basePath, prefix)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return []string{}, nil
	}

	var files []string
	err := filepath.Walk(fullPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		files = append(files, strings.ReplaceAll(relPath, "\\", "/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

func (l *LocalStorage) GetProviderName() string {
	return "local"
}

// cleanupEmptyDirs removes empty parent directories up to basePath
func (l *LocalStorage) cleanupEmptyDirs(dir string) {
	absBase, _ := filepath.Abs(l.basePath)
	absDir, _ := filepath.Abs(dir)

	for absDir != absBase && strings.HasPrefix(absDir, absBase) {
		entries, err := os.ReadDir(absDir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(absDir)
		absDir = filepath.Dir(absDir)
	}
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
