package engine

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-fits/internal/card"
)

func primaryUnit(data []byte) *Unit {
	u := NewUnit()
	u.Append(card.Card{Kind: card.KindValue, Keyword: "SIMPLE", Value: "T"})
	u.Append(card.Card{Kind: card.KindValue, Keyword: "BITPIX", Value: "8"})
	if data == nil {
		u.Append(card.Card{Kind: card.KindValue, Keyword: "NAXIS", Value: "0"})
	} else {
		u.Append(card.Card{Kind: card.KindValue, Keyword: "NAXIS", Value: "1"})
		u.Append(card.Card{Kind: card.KindValue, Keyword: "NAXIS1", Value: strconv.Itoa(len(data))})
		u.SetData(data)
	}
	return u
}

func TestBufferRowCount(t *testing.T) {
	assert.Equal(t, int64(1), BufferRowCount(0))
	assert.Equal(t, int64(40), BufferRowCount(BlockSize))
	assert.Equal(t, int64(1), BufferRowCount(BufferSize+1))
	assert.Equal(t, int64(BufferSize), BufferRowCount(1))
}

func TestUnitDataSize(t *testing.T) {
	u := NewUnit()
	u.Append(card.Card{Kind: card.KindValue, Keyword: "BITPIX", Value: "16"})
	u.Append(card.Card{Kind: card.KindValue, Keyword: "NAXIS", Value: "2"})
	u.Append(card.Card{Kind: card.KindValue, Keyword: "NAXIS1", Value: "3"})
	u.Append(card.Card{Kind: card.KindValue, Keyword: "NAXIS2", Value: "4"})
	size, err := dataSizeFromCards(u)
	require.NoError(t, err)
	assert.Equal(t, int64(24), size)
}

func TestUnitResize(t *testing.T) {
	u := NewUnit()
	u.SetData([]byte{1, 2, 3})
	u.Resize(5)
	assert.Equal(t, []byte{1, 2, 3, 0, 0}, u.Data())
	u.Resize(2)
	assert.Equal(t, []byte{1, 2}, u.Data())
	u.Resize(4)
	assert.Equal(t, []byte{1, 2, 0, 0}, u.Data())
}

func TestSerializeBlocks(t *testing.T) {
	u := primaryUnit([]byte{1, 2, 3, 4, 5})
	raw, err := u.Serialize()
	require.NoError(t, err)
	assert.Equal(t, 2*BlockSize, len(raw))
	assert.Equal(t, "SIMPLE", string(raw[:6]))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, raw[BlockSize:BlockSize+5])
}

func TestCreateFlushOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fits")
	f, err := Create(path, false, false, nil)
	require.NoError(t, err)
	f.Append(primaryUnit([]byte{9, 8, 7, 6, 5}))
	require.NoError(t, f.Flush())
	require.NoError(t, f.Close())

	g, err := Open(path, false, nil)
	require.NoError(t, err)
	defer g.Close()
	assert.Equal(t, 1, g.UnitCount())
	u, err := g.Unit(0)
	require.NoError(t, err)
	v, ok, err := u.IntValue("NAXIS1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5), v)
	assert.Equal(t, []byte{9, 8, 7, 6, 5}, u.Data())
}

func TestCreateExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fits")
	f, err := Create(path, false, false, nil)
	require.NoError(t, err)
	f.Append(primaryUnit(nil))
	require.NoError(t, f.Close())

	_, err = Create(path, false, false, nil)
	assert.Error(t, err)

	g, err := Create(path, true, false, nil)
	require.NoError(t, err)
	g.Append(primaryUnit(nil))
	require.NoError(t, g.Close())
}

func TestGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fits.gz")
	f, err := Create(path, false, false, nil)
	require.NoError(t, err)
	f.Append(primaryUnit([]byte{1, 2, 3, 4}))
	require.NoError(t, f.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, raw[:2])

	g, err := Open(path, false, nil)
	require.NoError(t, err)
	defer g.Close()
	u, err := g.Unit(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, u.Data())
}

func TestTemporary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch.fits")
	f, err := Create(path, false, true, nil)
	require.NoError(t, err)
	f.Append(primaryUnit(nil))
	require.NoError(t, f.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fits")
	f, err := Create(path, false, false, nil)
	require.NoError(t, err)
	f.Append(primaryUnit(nil))
	require.NoError(t, f.Close())

	g, err := Open(path, false, nil)
	require.NoError(t, err)
	defer g.Close()
	assert.ErrorIs(t, g.CheckWritable(), ErrReadOnly)
	assert.ErrorIs(t, g.Flush(), ErrReadOnly)
}

func TestNotFits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, BlockSize), 0644))
	_, err := Open(path, false, nil)
	assert.ErrorIs(t, err, ErrNotFits)
}

func TestClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fits")
	f, err := Create(path, false, false, nil)
	require.NoError(t, err)
	f.Append(primaryUnit(nil))
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	_, err = f.Unit(0)
	assert.ErrorIs(t, err, ErrClosed)
}
