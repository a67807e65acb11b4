package services

import "errors"

// Structural input errors. These propagate to the HTTP boundary;
// per-segment generation failures never do.
var (
	ErrEmptyScript     = errors.New("script has no segments")
	ErrSegmentNotFound = errors.New("segment not found")
	ErrNoVideoURLs     = errors.New("no video urls to merge")
	ErrContentNotFound = errors.New("content not found")
)
