package fits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeSize(t *testing.T) {
	assert.Equal(t, int64(60), ShapeSize(Pos(3, 4, 5)))
	// The arity-0 shape is a scalar.
	assert.Equal(t, int64(1), ShapeSize(Position{}))
}

func TestLinearIndex(t *testing.T) {
	shape := Pos(3, 4, 5)

	i, err := LinearIndex(shape, Pos(0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), i)

	// The first axis varies fastest.
	i, err = LinearIndex(shape, Pos(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), i)

	i, err = LinearIndex(shape, Pos(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	i, err = LinearIndex(shape, Pos(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(43), i)
}

func TestLinearIndexNegative(t *testing.T) {
	shape := Pos(3, 4, 5)
	i, err := LinearIndex(shape, Pos(-1, -1, -1))
	require.NoError(t, err)
	assert.Equal(t, ShapeSize(shape)-1, i)

	i, err = LinearIndex(shape, Pos(-3, -4, -5))
	require.NoError(t, err)
	assert.Equal(t, int64(0), i)
}

func TestLinearIndexErrors(t *testing.T) {
	_, err := LinearIndex(Pos(3, 4), Pos(1))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = LinearIndex(Pos(3, 4), Pos(3, 0))
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = LinearIndex(Pos(3, 4), Pos(-4, 0))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSegment(t *testing.T) {
	s := Rows(10, 19)
	assert.Equal(t, int64(10), s.Size())
	assert.NoError(t, s.validate())
	assert.ErrorIs(t, Rows(5, 4).validate(), ErrOutOfBounds)
	assert.ErrorIs(t, Rows(-1, 4).validate(), ErrOutOfBounds)

	fm := FileRows(s)
	assert.Equal(t, int64(0), fm.Mem)
	assert.Equal(t, s, fm.File)
}
