package ports

import "io"

// ArtifactStorePort persists final artifacts (merged videos,
// thumbnails, content JSON) on local disk or S3-compatible storage.
type ArtifactStorePort interface {
	// Save writes content at the storage-relative path and returns a
	// public URL for it.
	Save(file io.Reader, path string, contentType string) (string, error)
	Delete(path string) error
	GetFileURL(path string) string
	GetFileContent(path string) (io.ReadCloser, string, error)
	ListFiles(prefix string) ([]string, error)
	GetProviderName() string
}
