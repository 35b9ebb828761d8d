package fits

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSifRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.fits")

	raster, err := NewRaster[float64](Pos(8, 5))
	require.NoError(t, err)
	for i := range raster.Data() {
		raster.Data()[i] = float64(i) * 1.25
	}
	s, err := CreateSif(path, raster)
	require.NoError(t, err)
	require.NoError(t, WriteRecord(s.Header(), Record[float64]{Keyword: "EXPTIME", Value: 120, Unit: "s"}, CreateOrUpdate))
	require.NoError(t, s.Close())

	r, err := OpenSif(path)
	require.NoError(t, err)
	defer r.Close()

	shape, err := r.ReadShape()
	require.NoError(t, err)
	assert.Equal(t, Pos(8, 5), shape)

	back, err := ReadSifRaster[float64](r)
	require.NoError(t, err)
	assert.Equal(t, raster.Data(), back.Data())

	rec, err := ReadRecord[float64](r.Header(), "EXPTIME")
	require.NoError(t, err)
	assert.Equal(t, 120.0, rec.Value)
	assert.Equal(t, "s", rec.Unit)
}

func TestSifRewriteChangesType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.fits")

	f64, err := NewRaster[float64](Pos(4))
	require.NoError(t, err)
	s, err := CreateSif(path, f64)
	require.NoError(t, err)
	require.NoError(t, WriteRecord(s.Header(), NewRecord("OBSERVER", "someone"), CreateOrUpdate))

	// Rewriting with another pixel type redeclares the structure but
	// keeps user records.
	i32, err := NewRaster[int32](Pos(3, 2))
	require.NoError(t, err)
	for i := range i32.Data() {
		i32.Data()[i] = int32(i)
	}
	require.NoError(t, WriteSifRaster(s, i32))
	require.NoError(t, s.Close())

	r, err := EditSif(path)
	require.NoError(t, err)
	defer r.Close()

	back, err := ReadSifRaster[int32](r)
	require.NoError(t, err)
	assert.Equal(t, i32.Data(), back.Data())
	_, err = ReadSifRaster[float64](r)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	rec, err := ReadRecord[string](r.Header(), "OBSERVER")
	require.NoError(t, err)
	assert.Equal(t, "someone", rec.Value)
}

func TestSifChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.fits")
	raster, err := NewRaster[int16](Pos(6))
	require.NoError(t, err)
	s, err := CreateSif(path, raster)
	require.NoError(t, err)
	require.NoError(t, s.UpdateChecksums())
	require.NoError(t, s.VerifyChecksums())
	require.NoError(t, s.Close())

	r, err := OpenSif(path)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.VerifyChecksums())
}
