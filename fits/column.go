package fits

import (
	"fmt"

	"github.com/robert-malhotra/go-fits/internal/typecode"
)

// ColumnInfo is the metadata of one binary-table column. Repeat is the
// number of elements per row for numeric columns and the fixed character
// width for string columns; 1 (or 0, normalized to 1) means scalar.
type ColumnInfo[T Value] struct {
	Name   string
	Unit   string
	Repeat int64
}

// AnyColumnInfo is the type-erased view of a ColumnInfo, for declaring
// heterogeneous column sequences. Only ColumnInfo values implement it.
type AnyColumnInfo interface {
	// ColumnName returns the column name.
	ColumnName() string
	columnUnit() string
	columnTForm() string
}

// ColumnName returns the column name.
func (ci ColumnInfo[T]) ColumnName() string { return ci.Name }

func (ci ColumnInfo[T]) columnUnit() string { return ci.Unit }

func (ci ColumnInfo[T]) columnTForm() string {
	return typecode.Of[T]().TForm(ci.repeat())
}

func (ci ColumnInfo[T]) repeat() int64 {
	if ci.Repeat < 1 {
		return 1
	}
	return ci.Repeat
}

// Column is a named, contiguous, typed sequence of per-row values backing
// one field of a table extension. Numeric columns hold rowCount * repeat
// elements; string columns hold one string per row, the repeat count being
// the character width.
//
// Like Raster, a column either owns its buffer (NewColumn, or any column
// read from a file) or views caller memory (WrapColumn).
type Column[T Value] struct {
	info ColumnInfo[T]
	data []T
}

// NewColumn allocates an owning column with the given row count.
func NewColumn[T Value](info ColumnInfo[T], rowCount int64) *Column[T] {
	n := rowCount
	if !isString[T]() {
		n *= info.repeat()
	}
	return &Column[T]{info: info, data: make([]T, n)}
}

// WrapColumn builds a column viewing data, which the caller keeps owning.
// For numeric columns the buffer length must be a multiple of the repeat
// count.
func WrapColumn[T Value](info ColumnInfo[T], data []T) (*Column[T], error) {
	if !isString[T]() && int64(len(data))%info.repeat() != 0 {
		return nil, fmt.Errorf("column %s: buffer of %d elements is not a multiple of repeat %d: %w",
			info.Name, len(data), info.repeat(), ErrShapeMismatch)
	}
	return &Column[T]{info: info, data: data}, nil
}

func isString[T Value]() bool {
	return typecode.Of[T]().Letter == 'A'
}

// Info returns the column metadata.
func (c *Column[T]) Info() ColumnInfo[T] {
	return c.info
}

// Name returns the column name.
func (c *Column[T]) Name() string {
	return c.info.Name
}

// Rows returns the number of rows the buffer spans.
func (c *Column[T]) Rows() int64 {
	if isString[T]() {
		return int64(len(c.data))
	}
	return int64(len(c.data)) / c.info.repeat()
}

// Data returns the backing buffer (row-major: the repeat elements of a row
// are contiguous). Access through it is unchecked.
func (c *Column[T]) Data() []T {
	return c.data
}

// At returns the element at the given row, and for vector columns at the
// given repeat index (0 when omitted). Negative indices count from the
// end of their range.
func (c *Column[T]) At(row int64, repeat ...int64) (T, error) {
	var zero T
	i, err := c.index(row, repeat...)
	if err != nil {
		return zero, err
	}
	return c.data[i], nil
}

// Set assigns the element at the given row and repeat index, with the
// same semantics as At.
func (c *Column[T]) Set(v T, row int64, repeat ...int64) error {
	i, err := c.index(row, repeat...)
	if err != nil {
		return err
	}
	c.data[i] = v
	return nil
}

func (c *Column[T]) index(row int64, repeat ...int64) (int64, error) {
	rows := c.Rows()
	r := row
	if r < 0 {
		r += rows
	}
	if r < 0 || r >= rows {
		return 0, fmt.Errorf("column %s: row %d outside %d rows: %w", c.info.Name, row, rows, ErrOutOfBounds)
	}
	if isString[T]() {
		if len(repeat) > 0 && repeat[0] != 0 {
			return 0, fmt.Errorf("column %s: string columns have no repeat index: %w", c.info.Name, ErrOutOfBounds)
		}
		return r, nil
	}
	k := int64(0)
	if len(repeat) > 0 {
		k = repeat[0]
	}
	if k < 0 {
		k += c.info.repeat()
	}
	if k < 0 || k >= c.info.repeat() {
		return 0, fmt.Errorf("column %s: repeat index %d outside %d: %w",
			c.info.Name, repeat[0], c.info.repeat(), ErrOutOfBounds)
	}
	return r*c.info.repeat() + k, nil
}

// AnyColumn is the type-erased view of a Column, for batched transfers of
// heterogeneous column sequences. Only Column values implement it.
type AnyColumn interface {
	// Name returns the column name, used to resolve the target column
	// when no index is given.
	Name() string
	// Rows returns the number of rows the in-memory buffer spans.
	Rows() int64
	columnInfo() AnyColumnInfo
	fieldWidth() int64
	letter() byte
	decodeRows(src []byte, rowWidth, fieldOffset int64, fileRows Segment, mem int64) error
	encodeRows(dst []byte, rowWidth, fieldOffset int64, fileRows Segment, mem int64) error
}

func (c *Column[T]) columnInfo() AnyColumnInfo { return c.info }

func (c *Column[T]) letter() byte { return typecode.Of[T]().Letter }

// fieldWidth is the on-disk byte width of this column's field in one row.
func (c *Column[T]) fieldWidth() int64 {
	return c.info.repeat() * int64(typecode.Of[T]().Size)
}

// decodeRows fills the buffer rows starting at mem from the file rows of a
// row-major byte block. src holds the full rows [fileRows.First, Last].
func (c *Column[T]) decodeRows(src []byte, rowWidth, fieldOffset int64, fileRows Segment, mem int64) error {
	count := fileRows.Size()
	if mem < 0 || mem+count > c.Rows() {
		return fmt.Errorf("column %s: %d rows at memory row %d overflow %d buffer rows: %w",
			c.info.Name, count, mem, c.Rows(), ErrShapeMismatch)
	}
	size := int64(typecode.Of[T]().Size)
	repeat := c.info.repeat()
	for i := int64(0); i < count; i++ {
		field := src[i*rowWidth+fieldOffset : i*rowWidth+fieldOffset+c.fieldWidth()]
		if isString[T]() {
			c.data[mem+i] = typecode.GetElem[T](field)
			continue
		}
		for k := int64(0); k < repeat; k++ {
			c.data[(mem+i)*repeat+k] = typecode.GetElem[T](field[k*size : (k+1)*size])
		}
	}
	return nil
}

// encodeRows writes the buffer rows starting at mem into the file rows of
// a row-major byte block.
func (c *Column[T]) encodeRows(dst []byte, rowWidth, fieldOffset int64, fileRows Segment, mem int64) error {
	count := fileRows.Size()
	if mem < 0 || mem+count > c.Rows() {
		return fmt.Errorf("column %s: %d rows at memory row %d overflow %d buffer rows: %w",
			c.info.Name, count, mem, c.Rows(), ErrShapeMismatch)
	}
	size := int64(typecode.Of[T]().Size)
	repeat := c.info.repeat()
	for i := int64(0); i < count; i++ {
		field := dst[i*rowWidth+fieldOffset : i*rowWidth+fieldOffset+c.fieldWidth()]
		if isString[T]() {
			typecode.PutElem(field, c.data[mem+i])
			continue
		}
		for k := int64(0); k < repeat; k++ {
			typecode.PutElem(field[k*size:(k+1)*size], c.data[(mem+i)*repeat+k])
		}
	}
	return nil
}
