package fits

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitImage(t *testing.T) {
	f := newTestFile(t)

	img, err := InitImage[float32](f, "SCI", Pos(5, 4))
	require.NoError(t, err)

	shape, err := img.ReadShape()
	require.NoError(t, err)
	assert.Equal(t, Pos(5, 4), shape)

	// The data unit starts zero filled.
	back, err := ReadRaster[float32](img)
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 20), back.Data())

	bitpix, err := ReadRecord[int64](img.Header(), "BITPIX")
	require.NoError(t, err)
	assert.Equal(t, int64(-32), bitpix.Value)
}

func TestWriteReadRaster(t *testing.T) {
	f := newTestFile(t)

	raster, err := NewRaster[int16](Pos(6, 2))
	require.NoError(t, err)
	for i := range raster.Data() {
		raster.Data()[i] = int16(100 - 31*i)
	}
	img, err := AppendImage(f, "SCI", raster)
	require.NoError(t, err)

	back, err := ReadRaster[int16](img)
	require.NoError(t, err)
	assert.Equal(t, raster.Shape(), back.Shape())
	assert.Equal(t, raster.Data(), back.Data())

	// Reads into a fixed arity.
	_, err = ReadRasterN[int16](img, 2)
	require.NoError(t, err)
	_, err = ReadRasterN[int16](img, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestRasterTypeMismatch(t *testing.T) {
	f := newTestFile(t)
	raster, err := NewRaster[int16](Pos(3))
	require.NoError(t, err)
	img, err := AppendImage(f, "SCI", raster)
	require.NoError(t, err)

	_, err = ReadRaster[int32](img)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	// Same BITPIX, different BZERO.
	_, err = ReadRaster[uint16](img)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestUnsignedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fits")
	f, err := Create(path)
	require.NoError(t, err)

	raster, err := NewRaster[uint16](Pos(4))
	require.NoError(t, err)
	copy(raster.Data(), []uint16{0, 1, 32768, 65535})
	img, err := AppendImage(f, "RAW", raster)
	require.NoError(t, err)

	// Unsigned pixels are declared through the BZERO offset.
	bzero, err := ReadRecord[float64](img.Header(), "BZERO")
	require.NoError(t, err)
	assert.Equal(t, 32768.0, bzero.Value)
	require.NoError(t, f.Close())

	g, err := Open(path)
	require.NoError(t, err)
	defer g.Close()
	back, err := ReadRaster[uint16](mustImage(t, g, "RAW"))
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 32768, 65535}, back.Data())
	// The stored bytes are the sign-flipped signed form.
	_, err = ReadRaster[int16](mustImage(t, g, "RAW"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

// checkRasterRoundTrip writes values as a 1-dimensional image, reopens the
// file and compares the decoded pixels.
func checkRasterRoundTrip[T Numeric](t *testing.T, values []T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.fits")
	f, err := Create(path)
	require.NoError(t, err)
	raster, err := NewRaster[T](Pos(int64(len(values))))
	require.NoError(t, err)
	copy(raster.Data(), values)
	_, err = AppendImage(f, "RAW", raster)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	g, err := Open(path)
	require.NoError(t, err)
	defer g.Close()
	back, err := ReadRaster[T](mustImage(t, g, "RAW"))
	require.NoError(t, err)
	assert.Equal(t, values, back.Data())
}

func TestRasterPixelTypes(t *testing.T) {
	checkRasterRoundTrip(t, []uint8{0, 1, 127, 255})
	checkRasterRoundTrip(t, []int8{-128, -1, 0, 127})
	checkRasterRoundTrip(t, []int16{-32768, 0, 32767})
	checkRasterRoundTrip(t, []uint16{0, 32768, 65535})
	checkRasterRoundTrip(t, []int32{-2147483648, 0, 2147483647})
	checkRasterRoundTrip(t, []uint32{0, 2147483648, 4294967295})
	checkRasterRoundTrip(t, []int64{-9223372036854775808, 0, 9223372036854775807})
	checkRasterRoundTrip(t, []uint64{0, 9223372036854775808, 18446744073709551615})
	checkRasterRoundTrip(t, []float32{-1.5, 0, 3.25})
	checkRasterRoundTrip(t, []float64{-1.5, 0, 2.5e-300})
}

func mustImage(t *testing.T, f *File, name string) *ImageHDU {
	t.Helper()
	img, err := f.FindImage(name)
	require.NoError(t, err)
	return img
}

func TestWriteRasterShapeMismatch(t *testing.T) {
	f := newTestFile(t)
	img, err := InitImage[float64](f, "SCI", Pos(4, 4))
	require.NoError(t, err)

	wrong, err := NewRaster[float64](Pos(4, 3))
	require.NoError(t, err)
	assert.ErrorIs(t, WriteRaster(img, wrong), ErrShapeMismatch)
}

func TestReshape(t *testing.T) {
	f := newTestFile(t)
	img, err := InitImage[int32](f, "SCI", Pos(4, 3))
	require.NoError(t, err)

	require.NoError(t, img.Reshape(Pos(2, 2, 2)))
	shape, err := img.ReadShape()
	require.NoError(t, err)
	assert.Equal(t, Pos(2, 2, 2), shape)

	raster, err := NewRaster[int32](Pos(2, 2, 2))
	require.NoError(t, err)
	require.NoError(t, WriteRaster(img, raster))

	// Shrinking the rank drops the stale axis keywords.
	require.NoError(t, img.Reshape(Pos(6)))
	assert.False(t, img.Header().Has("NAXIS2"))
	assert.False(t, img.Header().Has("NAXIS3"))
	naxis, err := ReadRecord[int64](img.Header(), "NAXIS")
	require.NoError(t, err)
	assert.Equal(t, int64(1), naxis.Value)
}
