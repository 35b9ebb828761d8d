package fits

import "fmt"

// Position is an ordered list of signed coordinates or extents. Its arity
// is whatever length it was built with: a caller that knows the
// dimensionality at the call site builds a fixed-arity value with Pos, and
// one that discovers it at run time builds the slice directly. Both go
// through the same indexing algorithm.
//
// Used as an index, negative components count from the end of the axis.
// Used as a shape, every component must be strictly positive.
type Position []int64

// Pos builds a Position from its components.
func Pos(components ...int64) Position {
	return Position(components)
}

// ShapeSize returns the element count of a shape: the product of its
// extents. The arity-0 shape describes a scalar and has size 1.
func ShapeSize(shape Position) int64 {
	size := int64(1)
	for _, extent := range shape {
		size *= extent
	}
	return size
}

// LinearIndex computes the row-major linear offset of pos within shape:
// pos[0] varies fastest, so index = pos[0] + shape[0]*(pos[1] + ...).
// Negative components resolve from the end of their axis; after resolution
// every component must fall in [0, extent). Arity 0 always maps to 0.
func LinearIndex(shape, pos Position) (int64, error) {
	if len(shape) != len(pos) {
		return 0, fmt.Errorf("position arity %d does not match shape arity %d: %w",
			len(pos), len(shape), ErrShapeMismatch)
	}
	index := int64(0)
	for axis := len(shape) - 1; axis >= 0; axis-- {
		p, err := resolveAxis(pos[axis], shape[axis], axis)
		if err != nil {
			return 0, err
		}
		index = index*shape[axis] + p
	}
	return index, nil
}

// resolveAxis maps a possibly negative component to its positive
// equivalent and bounds-checks it.
func resolveAxis(p, extent int64, axis int) (int64, error) {
	resolved := p
	if resolved < 0 {
		resolved += extent
	}
	if resolved < 0 || resolved >= extent {
		return 0, fmt.Errorf("component %d on axis %d outside extent %d: %w",
			p, axis, extent, ErrOutOfBounds)
	}
	return resolved, nil
}

// validShape fails when any extent is not strictly positive.
func validShape(shape Position) error {
	for axis, extent := range shape {
		if extent <= 0 {
			return fmt.Errorf("extent %d on axis %d: %w", extent, axis, ErrShapeMismatch)
		}
	}
	return nil
}
