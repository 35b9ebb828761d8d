package fits

import (
	"github.com/robert-malhotra/go-fits/internal/typecode"
)

// SifFile is the single-image view of a FITS file: one Primary holding
// the image, nothing else. It trades the extension list for a flat API;
// the underlying File stays reachable for anything beyond it.
type SifFile struct {
	file *File
}

// OpenSif opens an existing file read-only as a single-image file.
func OpenSif(path string, opts ...FileOption) (*SifFile, error) {
	f, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	return &SifFile{file: f}, nil
}

// EditSif opens an existing file read-write as a single-image file.
func EditSif(path string, opts ...FileOption) (*SifFile, error) {
	f, err := Edit(path, opts...)
	if err != nil {
		return nil, err
	}
	return &SifFile{file: f}, nil
}

// CreateSif creates a new single-image file holding the raster.
func CreateSif[T Numeric](path string, raster *Raster[T], opts ...FileOption) (*SifFile, error) {
	f, err := Create(path, opts...)
	if err != nil {
		return nil, err
	}
	s := &SifFile{file: f}
	if err := WriteSifRaster(s, raster); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// File returns the underlying multi-extension view.
func (s *SifFile) File() *File {
	return s.file
}

// Path returns the file path.
func (s *SifFile) Path() string {
	return s.file.Path()
}

// Header returns the Primary's record handler.
func (s *SifFile) Header() *Header {
	return s.file.Primary().Header()
}

// ReadShape returns the image shape.
func (s *SifFile) ReadShape() (Position, error) {
	return (&ImageHDU{HDU: s.file.Primary()}).ReadShape()
}

// ReadSifRaster reads the image as an owning raster of T.
func ReadSifRaster[T Numeric](s *SifFile) (*Raster[T], error) {
	h, err := s.file.Primary().AsImage()
	if err != nil {
		return nil, err
	}
	return ReadRaster[T](h)
}

// WriteSifRaster replaces the image, redeclaring the pixel type and shape
// while keeping non-structural header records.
func WriteSifRaster[T Numeric](s *SifFile, raster *Raster[T]) error {
	h := s.file.Primary()
	u, err := h.editUnit()
	if err != nil {
		return err
	}
	resetImageUnit[T](u, true, "", raster.Shape())
	buf := make([]byte, raster.Size()*int64(typecode.Of[T]().Size))
	typecode.EncodePixels(buf, raster.Data())
	u.SetData(buf)
	return nil
}

// UpdateChecksums recomputes the Primary's DATASUM and CHECKSUM keywords.
func (s *SifFile) UpdateChecksums() error {
	return s.file.Primary().UpdateChecksums()
}

// VerifyChecksums checks the Primary's stored sums.
func (s *SifFile) VerifyChecksums() error {
	return s.file.Primary().VerifyChecksums()
}

// Flush writes pending mutations to disk.
func (s *SifFile) Flush() error {
	return s.file.Flush()
}

// Close flushes and releases the file.
func (s *SifFile) Close() error {
	return s.file.Close()
}
