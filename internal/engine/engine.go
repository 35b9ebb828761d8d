package engine

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-fits/internal/card"
)

// BlockSize is the FITS block size: headers and data units are padded to
// multiples of it.
const BlockSize = 2880

// bufferBlocks is the I/O buffer size in blocks, matching the granularity
// callers should chunk table transfers to.
const bufferBlocks = 40

// BufferSize is the preferred transfer size in bytes.
const BufferSize = bufferBlocks * BlockSize

// BufferRowCount returns the preferred number of table rows per transfer
// for a given row width. Always at least 1.
func BufferRowCount(rowWidth int64) int64 {
	if rowWidth <= 0 {
		return 1
	}
	n := int64(BufferSize) / rowWidth
	if n < 1 {
		return 1
	}
	return n
}

// File is an open FITS container: an ordered unit list backed by one
// exclusively-owned file handle.
type File struct {
	path      string
	file      *os.File
	writable  bool
	gzipped   bool
	temporary bool
	closed    bool
	dirty     bool
	units     []*Unit
	log       *zap.Logger
}

var gzipMagic = []byte{0x1f, 0x8b}

// Open opens an existing FITS file and parses all of its units. Gzipped
// files are detected by their magic number and decompressed transparently;
// they can only be opened read-only in writable=false mode or rewritten
// whole on flush.
func Open(path string, writable bool, log *zap.Logger) (*File, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	osFile, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	raw, err := io.ReadAll(osFile)
	if err != nil {
		osFile.Close()
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	gzipped := bytes.HasPrefix(raw, gzipMagic)
	if gzipped {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			osFile.Close()
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		raw, err = io.ReadAll(zr)
		if err != nil {
			osFile.Close()
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
	}
	units, err := parse(raw)
	if err != nil {
		osFile.Close()
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	log.Debug("opened FITS file",
		zap.String("path", path),
		zap.Bool("writable", writable),
		zap.Bool("gzipped", gzipped),
		zap.Int("units", len(units)))
	return &File{
		path:     path,
		file:     osFile,
		writable: writable,
		gzipped:  gzipped,
		units:    units,
		log:      log,
	}, nil
}

// Create creates a new FITS file. The unit list starts empty; the typed
// layer appends the mandatory Primary before first use. A path ending in
// ".gz" makes the file gzip-compressed on flush.
func Create(path string, overwrite, temporary bool, log *zap.Logger) (*File, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flag := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if overwrite {
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	osFile, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	log.Debug("created FITS file", zap.String("path", path))
	return &File{
		path:      path,
		file:      osFile,
		writable:  true,
		gzipped:   strings.HasSuffix(path, ".gz"),
		temporary: temporary,
		log:       log,
	}, nil
}

// parse splits raw file bytes into units.
func parse(raw []byte) ([]*Unit, error) {
	if len(raw) == 0 || len(raw)%BlockSize != 0 {
		return nil, ErrNotFits
	}
	first := strings.TrimRight(string(raw[0:8]), " ")
	if first != "SIMPLE" {
		return nil, ErrNotFits
	}
	var units []*Unit
	pos := 0
	for pos < len(raw) {
		end := -1
		for p := pos; p < len(raw); p += card.Width {
			if string(raw[p:p+3]) == "END" && strings.TrimRight(string(raw[p:p+8]), " ") == "END" {
				end = p
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("HDU %d: header has no END card", len(units))
		}
		cards, err := card.Decode(raw[pos:end])
		if err != nil {
			return nil, fmt.Errorf("HDU %d: %w", len(units), err)
		}
		u := &Unit{cards: cards}
		// The header occupies whole blocks; data starts at the next one.
		dataStart := ((end + BlockSize) / BlockSize) * BlockSize
		size, err := dataSizeFromCards(u)
		if err != nil {
			return nil, fmt.Errorf("HDU %d: %w", len(units), err)
		}
		if dataStart+int(size) > len(raw) {
			return nil, fmt.Errorf("HDU %d: data unit of %d bytes overruns the file", len(units), size)
		}
		u.data = append([]byte(nil), raw[dataStart:dataStart+int(size)]...)
		units = append(units, u)
		pos = dataStart + int(size)
		if rem := pos % BlockSize; rem != 0 {
			pos += BlockSize - rem
		}
	}
	return units, nil
}

// UnitCount returns the number of units.
func (f *File) UnitCount() int {
	return len(f.units)
}

// Unit returns the unit at index i.
func (f *File) Unit(i int) (*Unit, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if i < 0 || i >= len(f.units) {
		return nil, fmt.Errorf("HDU %d: %w", i, ErrNoUnit)
	}
	return f.units[i], nil
}

// Append adds a unit at the end of the file.
func (f *File) Append(u *Unit) {
	f.units = append(f.units, u)
	f.dirty = true
}

// Remove deletes the unit at index i, shifting later units down.
func (f *File) Remove(i int) error {
	if i < 0 || i >= len(f.units) {
		return fmt.Errorf("HDU %d: %w", i, ErrNoUnit)
	}
	f.units = append(f.units[:i], f.units[i+1:]...)
	f.dirty = true
	return nil
}

// MarkDirty records an in-place unit mutation the engine cannot observe
// itself. Flush and Close skip the write-back while the file is clean.
func (f *File) MarkDirty() {
	f.dirty = true
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Writable reports whether the file accepts mutations.
func (f *File) Writable() bool {
	return f.writable
}

// CheckWritable fails with ErrReadOnly or ErrClosed when the file cannot
// be mutated.
func (f *File) CheckWritable() error {
	if f.closed {
		return ErrClosed
	}
	if !f.writable {
		return ErrReadOnly
	}
	return nil
}

// Closed reports whether Close has been called.
func (f *File) Closed() bool {
	return f.closed
}

// Flush serializes every unit and writes the whole container back to disk.
// A clean file is left untouched.
func (f *File) Flush() error {
	if err := f.CheckWritable(); err != nil {
		return err
	}
	if !f.dirty {
		return nil
	}
	var out []byte
	for i, u := range f.units {
		b, err := u.Serialize()
		if err != nil {
			return fmt.Errorf("serializing HDU %d: %w", i, err)
		}
		out = append(out, b...)
	}
	if f.gzipped {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(out); err != nil {
			return fmt.Errorf("compressing %s: %w", f.path, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compressing %s: %w", f.path, err)
		}
		out = buf.Bytes()
	}
	if err := f.file.Truncate(0); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if _, err := f.file.WriteAt(out, 0); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if err := f.file.Sync(); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	f.dirty = false
	f.log.Debug("flushed FITS file", zap.String("path", f.path), zap.Int("bytes", len(out)))
	return nil
}

// Close flushes pending mutations (for writable files) and releases the
// handle. Temporary files are removed. Close is idempotent and runs on
// every exit path of the owning model.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	var flushErr error
	if f.writable && !f.temporary {
		flushErr = f.Flush()
	}
	f.closed = true
	closeErr := f.file.Close()
	if f.temporary {
		if err := os.Remove(f.path); err != nil && flushErr == nil && closeErr == nil {
			return fmt.Errorf("removing temporary file: %w", err)
		}
	}
	f.log.Debug("closed FITS file", zap.String("path", f.path))
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
