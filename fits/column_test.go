package fits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnInfoTForm(t *testing.T) {
	assert.Equal(t, "E", ColumnInfo[float32]{Name: "X"}.columnTForm())
	assert.Equal(t, "3J", ColumnInfo[int32]{Name: "N", Repeat: 3}.columnTForm())
	assert.Equal(t, "8A", ColumnInfo[string]{Name: "NAME", Repeat: 8}.columnTForm())
}

func TestNewColumn(t *testing.T) {
	c := NewColumn(ColumnInfo[int32]{Name: "N", Repeat: 3}, 5)
	assert.Equal(t, int64(5), c.Rows())
	assert.Len(t, c.Data(), 15)

	s := NewColumn(ColumnInfo[string]{Name: "NAME", Repeat: 8}, 5)
	assert.Equal(t, int64(5), s.Rows())
	assert.Len(t, s.Data(), 5)
}

func TestColumnAtSet(t *testing.T) {
	c := NewColumn(ColumnInfo[int32]{Name: "N", Repeat: 3}, 4)
	require.NoError(t, c.Set(9, 1, 2))
	v, err := c.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(9), v)
	assert.Equal(t, int32(9), c.Data()[5])

	require.NoError(t, c.Set(4, -1, -1))
	v, err = c.At(3, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(4), v)

	_, err = c.At(4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = c.At(0, 3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWrapColumn(t *testing.T) {
	buf := make([]float64, 6)
	c, err := WrapColumn(ColumnInfo[float64]{Name: "X", Repeat: 2}, buf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.Rows())
	require.NoError(t, c.Set(2.5, 0, 1))
	assert.Equal(t, 2.5, buf[1])

	_, err = WrapColumn(ColumnInfo[float64]{Name: "X", Repeat: 4}, buf)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestColumnFieldWidth(t *testing.T) {
	assert.Equal(t, int64(12), NewColumn(ColumnInfo[int32]{Name: "N", Repeat: 3}, 0).fieldWidth())
	assert.Equal(t, int64(8), NewColumn(ColumnInfo[string]{Name: "S", Repeat: 8}, 0).fieldWidth())
	assert.Equal(t, byte('E'), NewColumn(ColumnInfo[float32]{Name: "X"}, 0).letter())
}
