package engine

import "errors"

// Common errors
var (
	ErrNotFits  = errors.New("not a FITS file")
	ErrClosed   = errors.New("file is closed")
	ErrReadOnly = errors.New("file is open read-only")
	ErrNoUnit   = errors.New("no such HDU")
)
