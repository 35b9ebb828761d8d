package fits

import (
	"fmt"

	"github.com/robert-malhotra/go-fits/internal/typecode"
)

// Numeric is the set of element types an image extension can store.
type Numeric = typecode.Numeric

// Value is the full set of element types supported by records and columns.
type Value = typecode.Value

// Raster is an N-dimensional pixel array over a contiguous buffer. The
// buffer length always equals the product of the shape.
//
// A raster either owns its buffer (NewRaster, or any raster read from a
// file) or views caller-supplied memory (WrapRaster). A view never
// reallocates or extends the underlying slice; its lifetime is the
// caller's responsibility.
type Raster[T Numeric] struct {
	shape Position
	data  []T
}

// NewRaster allocates an owning raster with the given shape.
func NewRaster[T Numeric](shape Position) (*Raster[T], error) {
	if err := validShape(shape); err != nil {
		return nil, err
	}
	return &Raster[T]{
		shape: append(Position(nil), shape...),
		data:  make([]T, ShapeSize(shape)),
	}, nil
}

// WrapRaster builds a raster viewing data, which the caller keeps owning.
// The buffer length must equal the product of the shape.
func WrapRaster[T Numeric](shape Position, data []T) (*Raster[T], error) {
	if err := validShape(shape); err != nil {
		return nil, err
	}
	if int64(len(data)) != ShapeSize(shape) {
		return nil, fmt.Errorf("buffer of %d elements for shape of %d: %w",
			len(data), ShapeSize(shape), ErrShapeMismatch)
	}
	return &Raster[T]{shape: append(Position(nil), shape...), data: data}, nil
}

// Shape returns the raster shape. The returned slice must not be mutated.
func (r *Raster[T]) Shape() Position {
	return r.shape
}

// Rank returns the number of axes.
func (r *Raster[T]) Rank() int {
	return len(r.shape)
}

// Size returns the total element count.
func (r *Raster[T]) Size() int64 {
	return int64(len(r.data))
}

// Data returns the backing buffer in row-major order. Access through it is
// unchecked; use At for bounds-checked access.
func (r *Raster[T]) Data() []T {
	return r.data
}

// At returns the element at pos, resolving negative components from the
// end of their axis and bounds-checking each one.
func (r *Raster[T]) At(pos ...int64) (T, error) {
	i, err := LinearIndex(r.shape, pos)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.data[i], nil
}

// Set assigns the element at pos, with the same index semantics as At.
func (r *Raster[T]) Set(v T, pos ...int64) error {
	i, err := LinearIndex(r.shape, pos)
	if err != nil {
		return err
	}
	r.data[i] = v
	return nil
}

// Reshape changes the shape without touching the buffer. The new shape
// must preserve the element count.
func (r *Raster[T]) Reshape(shape Position) error {
	if err := validShape(shape); err != nil {
		return err
	}
	if ShapeSize(shape) != int64(len(r.data)) {
		return fmt.Errorf("reshaping %d elements to shape of %d: %w",
			len(r.data), ShapeSize(shape), ErrShapeMismatch)
	}
	r.shape = append(Position(nil), shape...)
	return nil
}
