// Package apperr defines the sentinel errors shared across the loader,
// the recipe service and the HTTP layer.
package apperr

import "errors"

var (
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrMissingParameter  = errors.New("missing parameter")
	ErrInvalidSlug       = errors.New("invalid slug")
	// ErrParseSkipped marks a per-document failure during batch loading.
	// It is logged and the document is dropped; it never fails a listing.
	ErrParseSkipped = errors.New("document skipped")
)
