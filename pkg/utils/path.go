package utils

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var (
	ErrInvalidPath      = errors.New("invalid path format")
	ErrUnsafePath       = errors.New("unsafe path detected")
	ErrPathTooLong      = errors.New("path is too long")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrInvalidCharacter = errors.New("path contains invalid characters")
)

const (
	MaxPathLength = 500
)

var dangerousChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f\x7f]`)

// SanitizeTitle converts a content title into a filesystem/URL safe slug.
// Used for the generated_content/<type>/<slug>/ directory layout.
func SanitizeTitle(title string) string {
	s := slug.Make(title)
	if s == "" {
		s = "untitled"
	}
	return s
}

// ContentPath builds the storage-relative path for one piece of content
func ContentPath(contentType, title string) string {
	ct := slug.Make(contentType)
	if ct == "" {
		ct = "free"
	}
	return filepath.Join(ct, SanitizeTitle(title))
}

// ValidateAndSanitizePath validates a caller-supplied relative path
func ValidateAndSanitizePath(customPath string) (string, error) {
	if customPath == "" {
		return "", ErrEmptyPath
	}

	if len(customPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	customPath = strings.TrimSpace(customPath)

	// reject directory traversal
	if strings.Contains(customPath, "..") {
		return "", ErrUnsafePath
	}

	if filepath.IsAbs(customPath) {
		return "", ErrUnsafePath
	}

	if dangerousChars.MatchString(customPath) {
		return "", ErrInvalidCharacter
	}

	// Normalize path separators to forward slashes
	customPath = strings.ReplaceAll(customPath, "\\", "/")

	// Remove duplicate slashes
	customPath = regexp.MustCompile(`/+`).ReplaceAllString(customPath, "/")

	customPath = strings.TrimPrefix(customPath, "/")
	customPath = strings.TrimSuffix(customPath, "/")

	if customPath == "" {
		return "", ErrEmptyPath
	}

	return customPath, nil
}

// SanitizeFileName sanitizes a filename to ensure it's safe for storage
func SanitizeFileName(filename string) string {
	// Remove path components
	filename = filepath.Base(filename)

	// Replace dangerous characters with underscore
	filename = dangerousChars.ReplaceAllString(filename, "_")

	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." || filename == ".." {
		filename = "file"
	}

	return filename
}

// EnsureExt appends ext when the filename does not already end with it
func EnsureExt(filename, ext string) string {
	if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(ext)) {
		return filename
	}
	return filename + ext
}
