package fits

import "fmt"

// Segment is an inclusive range of 0-based row indices.
type Segment struct {
	First int64
	Last  int64
}

// Rows builds a Segment from inclusive bounds.
func Rows(first, last int64) Segment {
	return Segment{First: first, Last: last}
}

// Size returns the number of rows in the segment.
func (s Segment) Size() int64 {
	return s.Last - s.First + 1
}

// validate fails when the bounds are inverted or negative.
func (s Segment) validate() error {
	if s.First < 0 || s.Last < s.First {
		return fmt.Errorf("invalid row segment [%d, %d]: %w", s.First, s.Last, ErrOutOfBounds)
	}
	return nil
}

// FileMemSegment maps a file-side row segment onto a memory-side offset,
// so that several row ranges can be concatenated into one destination
// buffer (or scattered from one source buffer) at caller-chosen offsets.
type FileMemSegment struct {
	// File is the row segment in the binary table.
	File Segment
	// Mem is the 0-based first row in the in-memory column the segment
	// maps to.
	Mem int64
}

// FileRows maps a file segment to memory offset 0.
func FileRows(rows Segment) FileMemSegment {
	return FileMemSegment{File: rows}
}
