// Package fits provides a typed in-memory model for FITS files and the
// read/write services that translate it to and from the on-disk layout.
package fits

import "errors"

// Common errors
var (
	ErrKeywordNotFound   = errors.New("keyword not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrExtensionNotFound = errors.New("extension not found")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrOutOfBounds       = errors.New("index out of bounds")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrNotImage          = errors.New("extension is not an image")
	ErrNotBintable       = errors.New("extension is not a binary table")
	ErrReadOnly          = errors.New("file is open read-only")
	ErrClosed            = errors.New("file is closed")
	ErrChecksum          = errors.New("checksum verification failed")
)
