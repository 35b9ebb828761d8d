package fits

import (
	"fmt"
	"strconv"

	"github.com/robert-malhotra/go-fits/internal/card"
	"github.com/robert-malhotra/go-fits/internal/engine"
	"github.com/robert-malhotra/go-fits/internal/typecode"
)

// BintableHDU is a handle onto a binary-table extension. In the file the
// table is row-major (one row's fields are contiguous); in memory data is
// column-major (one Column per field). The segment operations translate
// between the two in a single pass per transfer window, so reading or
// writing several columns at once costs one traversal instead of one per
// column.
type BintableHDU struct {
	*HDU
}

// Selector designates a column by name or by 0-based index. Resolving a
// name costs one pass over the column list; hot loops should resolve once
// and use ByIndex. Negative indices count from the last column.
type Selector struct {
	name    string
	index   int64
	byIndex bool
}

// ByName selects a column by its TTYPE name.
func ByName(name string) Selector {
	return Selector{name: name}
}

// ByIndex selects a column by 0-based position.
func ByIndex(i int64) Selector {
	return Selector{index: i, byIndex: true}
}

// columnDesc is the resolved on-disk description of one column.
type columnDesc struct {
	name   string
	unit   string
	letter byte
	repeat int64
	width  int64 // field width in bytes
	offset int64 // byte offset of the field within a row
}

// tableLayout is the live structure of the table, rebuilt from the header
// on every operation: the extension may have been mutated by another
// handle, so nothing is cached.
type tableLayout struct {
	rowWidth int64
	rows     int64
	cols     []columnDesc
}

func (t *BintableHDU) layout() (*tableLayout, *engine.Unit, error) {
	u, err := t.unit()
	if err != nil {
		return nil, nil, err
	}
	l, err := readLayout(t.index, u)
	if err != nil {
		return nil, nil, err
	}
	return l, u, nil
}

func readLayout(index int, u *engine.Unit) (*tableLayout, error) {
	fields, ok, err := u.IntValue("TFIELDS")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("HDU %d: keyword TFIELDS: %w", index, ErrKeywordNotFound)
	}
	rows, _, err := u.IntValue("NAXIS2")
	if err != nil {
		return nil, err
	}
	l := &tableLayout{rows: rows, cols: make([]columnDesc, fields)}
	for i := range l.cols {
		n := strconv.Itoa(i + 1)
		tform, ok := u.StringValue("TFORM" + n)
		if !ok {
			return nil, fmt.Errorf("HDU %d: keyword TFORM%s: %w", index, n, ErrKeywordNotFound)
		}
		repeat, letter, err := typecode.ParseTForm(tform)
		if err != nil {
			return nil, fmt.Errorf("HDU %d: column %d: %w", index, i, err)
		}
		size, err := typecode.LetterSize(letter)
		if err != nil {
			return nil, fmt.Errorf("HDU %d: column %d: %w", index, i, err)
		}
		name, _ := u.StringValue("TTYPE" + n)
		unit, _ := u.StringValue("TUNIT" + n)
		l.cols[i] = columnDesc{
			name:   name,
			unit:   unit,
			letter: letter,
			repeat: repeat,
			width:  repeat * int64(size),
			offset: l.rowWidth,
		}
		l.rowWidth += l.cols[i].width
	}
	declared, _, err := u.IntValue("NAXIS1")
	if err != nil {
		return nil, err
	}
	if declared != l.rowWidth {
		return nil, fmt.Errorf("HDU %d: NAXIS1 %d does not match the %d-byte column layout: %w",
			index, declared, l.rowWidth, ErrShapeMismatch)
	}
	return l, nil
}

// resolve maps a selector to a column index within the layout.
func (l *tableLayout) resolve(sel Selector) (int64, error) {
	if sel.byIndex {
		i := sel.index
		if i < 0 {
			i += int64(len(l.cols))
		}
		if i < 0 || i >= int64(len(l.cols)) {
			return 0, fmt.Errorf("column %d of %d: %w", sel.index, len(l.cols), ErrOutOfBounds)
		}
		return i, nil
	}
	for i, c := range l.cols {
		if c.name == sel.name {
			return int64(i), nil
		}
	}
	return 0, fmt.Errorf("column %s: %w", sel.name, ErrColumnNotFound)
}

// ColumnCount returns the live number of columns.
func (t *BintableHDU) ColumnCount() (int64, error) {
	l, _, err := t.layout()
	if err != nil {
		return 0, err
	}
	return int64(len(l.cols)), nil
}

// RowCount returns the live number of rows. It is read from the header on
// every call; another handle may have grown the table in between.
func (t *BintableHDU) RowCount() (int64, error) {
	l, _, err := t.layout()
	if err != nil {
		return 0, err
	}
	return l.rows, nil
}

// BufferRowCount returns the I/O engine's preferred transfer granularity
// in rows. Chunking segment operations to multiples of it gives the best
// throughput; correctness never depends on it.
func (t *BintableHDU) BufferRowCount() (int64, error) {
	l, _, err := t.layout()
	if err != nil {
		return 0, err
	}
	return engine.BufferRowCount(l.rowWidth), nil
}

// Has reports whether the table declares a column with the given name.
func (t *BintableHDU) Has(name string) bool {
	l, _, err := t.layout()
	if err != nil {
		return false
	}
	_, err = l.resolve(ByName(name))
	return err == nil
}

// Index resolves a column name to its 0-based index.
func (t *BintableHDU) Index(name string) (int64, error) {
	l, _, err := t.layout()
	if err != nil {
		return 0, err
	}
	return l.resolve(ByName(name))
}

// ColumnName returns the name of the column at the given index.
func (t *BintableHDU) ColumnName(index int64) (string, error) {
	l, _, err := t.layout()
	if err != nil {
		return "", err
	}
	i, err := l.resolve(ByIndex(index))
	if err != nil {
		return "", err
	}
	return l.cols[i].name, nil
}

// Names lists the column names in order.
func (t *BintableHDU) Names() ([]string, error) {
	l, _, err := t.layout()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(l.cols))
	for i, c := range l.cols {
		names[i] = c.name
	}
	return names, nil
}

// Rename changes a column's name.
func (t *BintableHDU) Rename(sel Selector, newName string) error {
	l, _, err := t.layout()
	if err != nil {
		return err
	}
	i, err := l.resolve(sel)
	if err != nil {
		return err
	}
	u, err := t.editUnit()
	if err != nil {
		return err
	}
	keyword := "TTYPE" + strconv.FormatInt(i+1, 10)
	c := card.Card{Kind: card.KindValue, Keyword: keyword, Value: newName, IsString: true}
	if j := u.Find(keyword); j >= 0 {
		c.Comment = u.Card(j).Comment
		u.Set(j, c)
	} else {
		u.Append(c)
	}
	return nil
}

// ReadColumnInfo reads a column's metadata as a typed ColumnInfo.
func ReadColumnInfo[T Value](t *BintableHDU, sel Selector) (ColumnInfo[T], error) {
	var info ColumnInfo[T]
	l, _, err := t.layout()
	if err != nil {
		return info, err
	}
	i, err := l.resolve(sel)
	if err != nil {
		return info, err
	}
	desc := l.cols[i]
	if desc.letter != typecode.Of[T]().Letter {
		return info, fmt.Errorf("column %s stores %q values, not %s: %w",
			desc.name, string(desc.letter), typeName[T](), ErrTypeMismatch)
	}
	return ColumnInfo[T]{Name: desc.name, Unit: desc.unit, Repeat: desc.repeat}, nil
}

// ReadColumn reads a whole column as a new owning Column.
func ReadColumn[T Value](t *BintableHDU, sel Selector) (*Column[T], error) {
	l, _, err := t.layout()
	if err != nil {
		return nil, err
	}
	if l.rows == 0 {
		info, err := ReadColumnInfo[T](t, sel)
		if err != nil {
			return nil, err
		}
		return NewColumn(info, 0), nil
	}
	return ReadSegment[T](t, Rows(0, l.rows-1), sel)
}

// ReadSegment reads the given row range of a column as a new owning
// Column.
func ReadSegment[T Value](t *BintableHDU, rows Segment, sel Selector) (*Column[T], error) {
	info, err := ReadColumnInfo[T](t, sel)
	if err != nil {
		return nil, err
	}
	if err := rows.validate(); err != nil {
		return nil, err
	}
	col := NewColumn(info, rows.Size())
	if err := t.readSegment(FileRows(rows), []Selector{sel}, []AnyColumn{col}); err != nil {
		return nil, err
	}
	return col, nil
}

// ReadInto fills existing columns completely, resolving each target by
// its name. All targets must span the full row count.
func (t *BintableHDU) ReadInto(cols ...AnyColumn) error {
	l, _, err := t.layout()
	if err != nil {
		return err
	}
	if l.rows == 0 {
		return nil
	}
	return t.ReadSegmentInto(FileRows(Rows(0, l.rows-1)), cols...)
}

// ReadSegmentInto fills existing columns from one file-row segment,
// resolving each target by its name. The memory-side offset of seg
// selects where the segment lands in the target buffers, which lets a
// caller concatenate several row ranges into one buffer. All requested
// columns are decoded in a single pass over the row block; prefer one
// call with many columns over many single-column calls.
func (t *BintableHDU) ReadSegmentInto(seg FileMemSegment, cols ...AnyColumn) error {
	return t.readSegment(seg, selectorsFor(cols), cols)
}

// ReadSegmentIntoIndexed is ReadSegmentInto with explicit column indices,
// skipping name resolution.
func (t *BintableHDU) ReadSegmentIntoIndexed(seg FileMemSegment, indices []int64, cols ...AnyColumn) error {
	if len(indices) != len(cols) {
		return fmt.Errorf("%d indices for %d columns: %w", len(indices), len(cols), ErrShapeMismatch)
	}
	sels := make([]Selector, len(indices))
	for i, idx := range indices {
		sels[i] = ByIndex(idx)
	}
	return t.readSegment(seg, sels, cols)
}

func selectorsFor(cols []AnyColumn) []Selector {
	sels := make([]Selector, len(cols))
	for i, c := range cols {
		sels[i] = ByName(c.Name())
	}
	return sels
}

// readSegment is the read primitive: one validation pass, then one decode
// pass over the row block for all selected columns.
func (t *BintableHDU) readSegment(seg FileMemSegment, sels []Selector, cols []AnyColumn) error {
	l, u, err := t.layout()
	if err != nil {
		return err
	}
	if err := seg.File.validate(); err != nil {
		return err
	}
	if seg.File.Last >= l.rows {
		return fmt.Errorf("rows [%d, %d] of %d: %w", seg.File.First, seg.File.Last, l.rows, ErrOutOfBounds)
	}
	descs, err := t.matchColumns(l, sels, cols)
	if err != nil {
		return err
	}
	src := u.Data()[seg.File.First*l.rowWidth : (seg.File.Last+1)*l.rowWidth]
	for i, col := range cols {
		if err := col.decodeRows(src, l.rowWidth, descs[i].offset, seg.File, seg.Mem); err != nil {
			return err
		}
	}
	return nil
}

// matchColumns resolves selectors and checks each target against the
// on-disk column type and width.
func (t *BintableHDU) matchColumns(l *tableLayout, sels []Selector, cols []AnyColumn) ([]columnDesc, error) {
	descs := make([]columnDesc, len(cols))
	for i, col := range cols {
		idx, err := l.resolve(sels[i])
		if err != nil {
			return nil, err
		}
		desc := l.cols[idx]
		if desc.letter != col.letter() {
			return nil, fmt.Errorf("column %s stores %q values: %w", desc.name, string(desc.letter), ErrTypeMismatch)
		}
		if desc.width != col.fieldWidth() {
			return nil, fmt.Errorf("column %s has %d-byte fields, buffer has %d: %w",
				desc.name, desc.width, col.fieldWidth(), ErrShapeMismatch)
		}
		descs[i] = desc
	}
	return descs, nil
}

// WriteColumn writes a whole column starting at row 0, growing the table
// when the column is longer than it.
func WriteColumn[T Value](t *BintableHDU, col *Column[T]) error {
	if col.Rows() == 0 {
		return nil
	}
	return t.WriteSegmentSeq(FileRows(Rows(0, col.Rows()-1)), col)
}

// WriteSeq writes several whole columns starting at row 0. All columns
// must span the same number of rows.
func (t *BintableHDU) WriteSeq(cols ...AnyColumn) error {
	if len(cols) == 0 {
		return nil
	}
	rows := cols[0].Rows()
	for _, c := range cols[1:] {
		if c.Rows() != rows {
			return fmt.Errorf("columns %s and %s span %d and %d rows: %w",
				cols[0].Name(), c.Name(), rows, c.Rows(), ErrShapeMismatch)
		}
	}
	if rows == 0 {
		return nil
	}
	return t.WriteSegmentSeq(FileRows(Rows(0, rows-1)), cols...)
}

// WriteSegment writes one column segment.
func WriteSegment[T Value](t *BintableHDU, seg FileMemSegment, col *Column[T]) error {
	return t.WriteSegmentSeq(seg, col)
}

// WriteSegmentSeq is the write primitive: it resolves every column by
// name (the column must have been declared with Init or at extension
// creation), grows the table zero-filled when the file segment extends
// past the current row count, and encodes all columns in a single pass.
// The batch is not atomic: a failure leaves earlier mutations in place.
func (t *BintableHDU) WriteSegmentSeq(seg FileMemSegment, cols ...AnyColumn) error {
	l, _, err := t.layout()
	if err != nil {
		return err
	}
	u, err := t.editUnit()
	if err != nil {
		return err
	}
	if err := seg.File.validate(); err != nil {
		return err
	}
	descs, err := t.matchColumns(l, selectorsFor(cols), cols)
	if err != nil {
		return err
	}
	if seg.File.Last >= l.rows {
		setIntCard(u, "NAXIS2", seg.File.Last+1)
		u.Resize((seg.File.Last + 1) * l.rowWidth)
	}
	dst := u.Data()[seg.File.First*l.rowWidth : (seg.File.Last+1)*l.rowWidth]
	for i, col := range cols {
		if err := col.encodeRows(dst, l.rowWidth, descs[i].offset, seg.File, seg.Mem); err != nil {
			return err
		}
	}
	return nil
}

// Init declares additional columns without writing data. Existing rows
// are preserved: each stored row is widened in place and the new fields
// are zero-filled.
func (t *BintableHDU) Init(infos ...AnyColumnInfo) error {
	if len(infos) == 0 {
		return nil
	}
	l, _, err := t.layout()
	if err != nil {
		return err
	}
	u, err := t.editUnit()
	if err != nil {
		return err
	}
	added := int64(0)
	for i, info := range infos {
		n := strconv.FormatInt(int64(len(l.cols)+i+1), 10)
		tform := info.columnTForm()
		repeat, letter, err := typecode.ParseTForm(tform)
		if err != nil {
			return err
		}
		size, err := typecode.LetterSize(letter)
		if err != nil {
			return err
		}
		added += repeat * int64(size)
		u.Append(card.Card{Kind: card.KindValue, Keyword: "TTYPE" + n, Value: info.ColumnName(), IsString: true})
		u.Append(card.Card{Kind: card.KindValue, Keyword: "TFORM" + n, Value: tform, IsString: true})
		if unit := info.columnUnit(); unit != "" {
			u.Append(card.Card{Kind: card.KindValue, Keyword: "TUNIT" + n, Value: unit, IsString: true})
		}
	}
	setIntCard(u, "TFIELDS", int64(len(l.cols)+len(infos)))
	setIntCard(u, "NAXIS1", l.rowWidth+added)
	if l.rows > 0 {
		old := u.Data()
		grown := make([]byte, l.rows*(l.rowWidth+added))
		for r := int64(0); r < l.rows; r++ {
			copy(grown[r*(l.rowWidth+added):], old[r*l.rowWidth:(r+1)*l.rowWidth])
		}
		u.SetData(grown)
	}
	return nil
}

// RemoveColumn deletes a column, narrowing every stored row.
func (t *BintableHDU) RemoveColumn(sel Selector) error {
	l, _, err := t.layout()
	if err != nil {
		return err
	}
	i, err := l.resolve(sel)
	if err != nil {
		return err
	}
	u, err := t.editUnit()
	if err != nil {
		return err
	}
	gone := l.cols[i]
	// Shift the per-column keywords of later columns down by one.
	for j := i + 1; j < int64(len(l.cols)); j++ {
		for _, prefix := range []string{"TTYPE", "TFORM", "TUNIT"} {
			from := prefix + strconv.FormatInt(j+1, 10)
			to := prefix + strconv.FormatInt(j, 10)
			if idx := u.Find(from); idx >= 0 {
				c := u.Card(idx)
				c.Keyword = to
				if old := u.Find(to); old >= 0 {
					u.Set(old, c)
					u.Remove(idx)
				} else {
					u.Set(idx, c)
				}
			} else if old := u.Find(to); old >= 0 {
				u.Remove(old)
			}
		}
	}
	// Whatever still carries the old highest ordinal is stale.
	last := strconv.Itoa(len(l.cols))
	for _, prefix := range []string{"TTYPE", "TFORM", "TUNIT"} {
		if idx := u.Find(prefix + last); idx >= 0 {
			u.Remove(idx)
		}
	}
	setIntCard(u, "TFIELDS", int64(len(l.cols))-1)
	setIntCard(u, "NAXIS1", l.rowWidth-gone.width)
	if l.rows > 0 {
		old := u.Data()
		narrowed := make([]byte, l.rows*(l.rowWidth-gone.width))
		for r := int64(0); r < l.rows; r++ {
			row := old[r*l.rowWidth : (r+1)*l.rowWidth]
			dst := narrowed[r*(l.rowWidth-gone.width):]
			n := copy(dst, row[:gone.offset])
			copy(dst[n:], row[gone.offset+gone.width:])
		}
		u.SetData(narrowed)
	}
	return nil
}

// setIntCard updates or appends an integer-valued card.
func setIntCard(u *engine.Unit, keyword string, v int64) {
	c := card.Card{Kind: card.KindValue, Keyword: keyword, Value: strconv.FormatInt(v, 10)}
	if i := u.Find(keyword); i >= 0 {
		c.Comment = u.Card(i).Comment
		u.Set(i, c)
	} else {
		u.Append(c)
	}
}

// bintableCards builds the structural header of a new table extension.
func bintableCards(name string, infos []AnyColumnInfo) ([]card.Card, error) {
	rowWidth := int64(0)
	var colCards []card.Card
	for i, info := range infos {
		n := strconv.Itoa(i + 1)
		tform := info.columnTForm()
		repeat, letter, err := typecode.ParseTForm(tform)
		if err != nil {
			return nil, err
		}
		size, err := typecode.LetterSize(letter)
		if err != nil {
			return nil, err
		}
		rowWidth += repeat * int64(size)
		colCards = append(colCards,
			card.Card{Kind: card.KindValue, Keyword: "TTYPE" + n, Value: info.ColumnName(), IsString: true},
			card.Card{Kind: card.KindValue, Keyword: "TFORM" + n, Value: tform, IsString: true})
		if unit := info.columnUnit(); unit != "" {
			colCards = append(colCards, card.Card{Kind: card.KindValue, Keyword: "TUNIT" + n, Value: unit, IsString: true})
		}
	}
	cards := []card.Card{
		{Kind: card.KindValue, Keyword: "XTENSION", Value: "BINTABLE", IsString: true, Comment: "binary table extension"},
		{Kind: card.KindValue, Keyword: "BITPIX", Value: "8", Comment: "8-bit bytes"},
		{Kind: card.KindValue, Keyword: "NAXIS", Value: "2", Comment: "2-dimensional table"},
		{Kind: card.KindValue, Keyword: "NAXIS1", Value: strconv.FormatInt(rowWidth, 10), Comment: "bytes per row"},
		{Kind: card.KindValue, Keyword: "NAXIS2", Value: "0", Comment: "number of rows"},
		{Kind: card.KindValue, Keyword: "PCOUNT", Value: "0"},
		{Kind: card.KindValue, Keyword: "GCOUNT", Value: "1"},
		{Kind: card.KindValue, Keyword: "TFIELDS", Value: strconv.Itoa(len(infos)), Comment: "number of columns"},
	}
	cards = append(cards, colCards...)
	if name != "" {
		cards = append(cards, card.Card{Kind: card.KindValue, Keyword: "EXTNAME", Value: name, IsString: true})
	}
	return cards, nil
}
