package fits

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-fits/internal/engine"
	"github.com/robert-malhotra/go-fits/internal/typecode"
)

// File is an open multi-extension FITS file: an ordered extension list
// headed by the mandatory Primary. Mutations act on the in-memory model;
// Flush and Close write it back to disk. A File exclusively owns its
// handle and is not safe for concurrent use.
type File struct {
	eng *engine.File
	log *zap.Logger
}

// Open opens an existing file read-only. Gzip-compressed files are
// detected and decompressed transparently.
func Open(path string, opts ...FileOption) (*File, error) {
	return open(path, false, opts)
}

// Edit opens an existing file read-write.
func Edit(path string, opts ...FileOption) (*File, error) {
	return open(path, true, opts)
}

func open(path string, writable bool, opts []FileOption) (*File, error) {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(o)
	}
	eng, err := engine.Open(path, writable, o.logger)
	if err != nil {
		return nil, err
	}
	return &File{eng: eng, log: o.logger}, nil
}

// Create creates a new file with an empty Primary (BITPIX 8, NAXIS 0).
// The path decides the on-disk encoding: a ".gz" suffix selects gzip
// compression. Create fails on an existing path unless WithOverwrite is
// given.
func Create(path string, opts ...FileOption) (*File, error) {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(o)
	}
	eng, err := engine.Create(path, o.overwrite, o.temporary, o.logger)
	if err != nil {
		return nil, err
	}
	primary := engine.NewUnit()
	primary.SetCards(imageCards[uint8](true, "", Position{}))
	eng.Append(primary)
	return &File{eng: eng, log: o.logger}, nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.eng.Path()
}

// Writable reports whether the file accepts mutations.
func (f *File) Writable() bool {
	return f.eng.Writable()
}

// HDUCount returns the number of extensions, Primary included.
func (f *File) HDUCount() int {
	return f.eng.UnitCount()
}

// HDU returns a handle onto the extension at index i.
func (f *File) HDU(i int) (*HDU, error) {
	if _, err := f.eng.Unit(i); err != nil {
		return nil, mapEngineErr(err)
	}
	return &HDU{file: f, index: i}, nil
}

// Primary returns the handle onto extension 0.
func (f *File) Primary() *HDU {
	return &HDU{file: f, index: 0}
}

// Image returns the extension at index i narrowed to an image.
func (f *File) Image(i int) (*ImageHDU, error) {
	h, err := f.HDU(i)
	if err != nil {
		return nil, err
	}
	return h.AsImage()
}

// Bintable returns the extension at index i narrowed to a binary table.
func (f *File) Bintable(i int) (*BintableHDU, error) {
	h, err := f.HDU(i)
	if err != nil {
		return nil, err
	}
	return h.AsBintable()
}

// Find returns the first extension whose EXTNAME matches name.
func (f *File) Find(name string) (*HDU, error) {
	for i := 0; i < f.HDUCount(); i++ {
		h, err := f.HDU(i)
		if err != nil {
			return nil, err
		}
		if h.Name() == name {
			return h, nil
		}
	}
	return nil, fmt.Errorf("extension %s: %w", name, ErrExtensionNotFound)
}

// FindImage is Find narrowed to an image extension.
func (f *File) FindImage(name string) (*ImageHDU, error) {
	h, err := f.Find(name)
	if err != nil {
		return nil, err
	}
	return h.AsImage()
}

// FindBintable is Find narrowed to a binary-table extension.
func (f *File) FindBintable(name string) (*BintableHDU, error) {
	h, err := f.Find(name)
	if err != nil {
		return nil, err
	}
	return h.AsBintable()
}

// Remove deletes the extension at index i, shifting later extensions
// down. Handles onto later extensions keep their positional index and
// point at the shifted neighbors afterwards. The Primary cannot be
// removed.
func (f *File) Remove(i int) error {
	if err := f.eng.CheckWritable(); err != nil {
		return mapEngineErr(err)
	}
	if i == 0 {
		return fmt.Errorf("the Primary cannot be removed")
	}
	if err := f.eng.Remove(i); err != nil {
		return mapEngineErr(err)
	}
	return nil
}

// markEdited records that an extension was mutated, so Flush and Close
// know there is something to write.
func (f *File) markEdited(index int) {
	f.eng.MarkDirty()
	f.log.Debug("HDU edited", zap.Int("hdu", index))
}

// Flush writes the in-memory model back to disk. A no-op when nothing
// was mutated since the last flush.
func (f *File) Flush() error {
	if err := f.eng.Flush(); err != nil {
		return mapEngineErr(err)
	}
	return nil
}

// Close flushes pending mutations of writable files and releases the
// handle; a file with no pending mutations is not rewritten. Temporary
// files are removed instead of flushed. Close is idempotent.
func (f *File) Close() error {
	if err := f.eng.Close(); err != nil {
		return mapEngineErr(err)
	}
	return nil
}

// Walk calls fn for every extension in file order, stopping at the first
// error.
func (f *File) Walk(fn func(h *HDU) error) error {
	for i := 0; i < f.HDUCount(); i++ {
		h, err := f.HDU(i)
		if err != nil {
			return err
		}
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

// InitImage appends an image extension with the given shape and a
// zero-filled data unit.
func InitImage[T Numeric](f *File, name string, shape Position) (*ImageHDU, error) {
	if err := f.eng.CheckWritable(); err != nil {
		return nil, mapEngineErr(err)
	}
	if err := validShape(shape); err != nil {
		return nil, err
	}
	u := engine.NewUnit()
	u.SetCards(imageCards[T](false, name, shape))
	u.Resize(ShapeSize(shape) * int64(typecode.Of[T]().Size))
	f.eng.Append(u)
	index := f.eng.UnitCount() - 1
	f.markEdited(index)
	return &ImageHDU{HDU: &HDU{file: f, index: index}}, nil
}

// AppendImage appends an image extension holding the raster.
func AppendImage[T Numeric](f *File, name string, raster *Raster[T]) (*ImageHDU, error) {
	h, err := InitImage[T](f, name, raster.Shape())
	if err != nil {
		return nil, err
	}
	if err := WriteRaster(h, raster); err != nil {
		return nil, err
	}
	return h, nil
}

// InitBintable appends a binary-table extension declaring the given
// columns with zero rows.
func (f *File) InitBintable(name string, infos ...AnyColumnInfo) (*BintableHDU, error) {
	if err := f.eng.CheckWritable(); err != nil {
		return nil, mapEngineErr(err)
	}
	cards, err := bintableCards(name, infos)
	if err != nil {
		return nil, err
	}
	u := engine.NewUnit()
	u.SetCards(cards)
	f.eng.Append(u)
	index := f.eng.UnitCount() - 1
	f.markEdited(index)
	return &BintableHDU{HDU: &HDU{file: f, index: index}}, nil
}

// AppendBintable appends a binary-table extension and writes the columns
// into it. All columns must span the same number of rows.
func (f *File) AppendBintable(name string, cols ...AnyColumn) (*BintableHDU, error) {
	infos := make([]AnyColumnInfo, len(cols))
	for i, c := range cols {
		infos[i] = c.columnInfo()
	}
	t, err := f.InitBintable(name, infos...)
	if err != nil {
		return nil, err
	}
	if err := t.WriteSeq(cols...); err != nil {
		return nil, err
	}
	return t, nil
}
