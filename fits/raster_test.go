package fits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaster(t *testing.T) {
	r, err := NewRaster[float32](Pos(4, 3))
	require.NoError(t, err)
	assert.Equal(t, Pos(4, 3), r.Shape())
	assert.Equal(t, 2, r.Rank())
	assert.Equal(t, int64(12), r.Size())
	assert.Len(t, r.Data(), 12)

	_, err = NewRaster[float32](Pos(4, 0))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestRasterAtSet(t *testing.T) {
	r, err := NewRaster[int32](Pos(4, 3))
	require.NoError(t, err)

	require.NoError(t, r.Set(7, 1, 2))
	v, err := r.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)
	// Row-major with the first axis fastest: (1,2) is element 1 + 4*2.
	assert.Equal(t, int32(7), r.Data()[9])

	require.NoError(t, r.Set(5, -1, -1))
	v, err = r.At(3, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)

	_, err = r.At(4, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.At(0)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestWrapRaster(t *testing.T) {
	buf := make([]float64, 6)
	r, err := WrapRaster(Pos(3, 2), buf)
	require.NoError(t, err)
	require.NoError(t, r.Set(1.5, 0, 1))
	// A view writes through to the caller's buffer.
	assert.Equal(t, 1.5, buf[3])

	_, err = WrapRaster(Pos(3, 3), buf)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestRasterReshape(t *testing.T) {
	r, err := NewRaster[int16](Pos(6))
	require.NoError(t, err)
	require.NoError(t, r.Reshape(Pos(2, 3)))
	assert.Equal(t, Pos(2, 3), r.Shape())
	assert.ErrorIs(t, r.Reshape(Pos(4)), ErrShapeMismatch)
}
