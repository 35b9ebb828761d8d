package fits

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/robert-malhotra/go-fits/internal/card"
	"github.com/robert-malhotra/go-fits/internal/engine"
)

// WriteMode selects the behavior of WriteRecord against the current state
// of the keyword.
type WriteMode int

const (
	// CreateOrUpdate writes the record, replacing any existing one.
	CreateOrUpdate WriteMode = iota
	// CreateOnly fails when the keyword is already present.
	CreateOnly
	// UpdateOnly fails when the keyword is absent.
	UpdateOnly
)

// Header reads and writes the records of one extension. It is a thin
// stateless facade over the extension's unit in the engine; every
// operation goes to the live header, nothing is cached.
type Header struct {
	hdu *HDU
}

// Has reports whether the header contains a valued record with the given
// keyword. Long keywords are matched transparently.
func (h *Header) Has(keyword string) bool {
	u, err := h.hdu.unit()
	if err != nil {
		return false
	}
	return u.Find(keyword) >= 0
}

// Keywords lists the valued keywords in header order.
func (h *Header) Keywords() ([]string, error) {
	u, err := h.hdu.unit()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, c := range u.Cards() {
		if c.Kind == card.KindValue {
			names = append(names, c.Keyword)
		}
	}
	return names, nil
}

// Text returns the whole header as formatted card images, one per line,
// including the END card.
func (h *Header) Text() (string, error) {
	u, err := h.hdu.unit()
	if err != nil {
		return "", err
	}
	text, err := u.HeaderText()
	if err != nil {
		return "", err
	}
	return text + string(card.End()) + "\n", nil
}

// ReadRecord parses the record stored under keyword. An absent keyword
// fails with ErrKeywordNotFound, a value that cannot be coerced to T with
// ErrTypeMismatch. A leading bracketed annotation in the on-disk comment
// is split out as the unit.
func ReadRecord[T Value](h *Header, keyword string) (Record[T], error) {
	return readRecord[T](h, keyword, "")
}

// ReadRecordOr behaves like ReadRecord but returns fallback when the
// keyword is absent. Coercion failures still fail. When the fallback
// declares a unit, a bracketed comment annotation is kept as comment text:
// the explicit unit wins over the convention.
func ReadRecordOr[T Value](h *Header, fallback Record[T]) (Record[T], error) {
	if !h.Has(fallback.Keyword) {
		return fallback, nil
	}
	return readRecord[T](h, fallback.Keyword, fallback.Unit)
}

func readRecord[T Value](h *Header, keyword, knownUnit string) (Record[T], error) {
	var rec Record[T]
	u, err := h.hdu.unit()
	if err != nil {
		return rec, err
	}
	i := u.Find(keyword)
	if i < 0 {
		return rec, fmt.Errorf("keyword %s: %w", keyword, ErrKeywordNotFound)
	}
	c := u.Card(i)
	value, err := parseValue[T](c)
	if err != nil {
		return rec, err
	}
	rec.Keyword = keyword
	rec.Value = value
	if knownUnit != "" {
		rec.Unit = knownUnit
		rec.Comment = c.Comment
	} else {
		rec.Unit, rec.Comment = splitRawComment(c.Comment)
	}
	return rec, nil
}

// WriteRecord writes a record according to mode. String values overflowing
// the fixed value field switch to the long-string convention and stamp the
// LONGSTRN marker keyword once per header; long keywords transparently use
// the HIERARCH convention. A record that cannot be rendered as card images
// is rejected here, never at flush time.
func WriteRecord[T Value](h *Header, rec Record[T], mode WriteMode) error {
	u, err := h.hdu.editUnit()
	if err != nil {
		return err
	}
	i := u.Find(rec.Keyword)
	switch mode {
	case CreateOnly:
		if i >= 0 {
			return fmt.Errorf("keyword %s already present", rec.Keyword)
		}
	case UpdateOnly:
		if i < 0 {
			return fmt.Errorf("keyword %s: %w", rec.Keyword, ErrKeywordNotFound)
		}
	}
	text, isString := formatValue(rec.Value)
	c := card.Card{
		Kind:     card.KindValue,
		Keyword:  rec.Keyword,
		Value:    text,
		IsString: isString,
		Comment:  rec.RawComment(),
	}
	imgs, err := card.Format(c)
	if err != nil {
		return err
	}
	// More than one image means the value continues onto CONTINUE cards.
	if isString && len(imgs) > card.Width {
		h.stampLongString(u)
		i = u.Find(rec.Keyword)
	}
	if i >= 0 {
		u.Set(i, c)
	} else {
		u.Append(c)
	}
	return nil
}

// stampLongString declares the long-string convention in use, once.
func (h *Header) stampLongString(u *engine.Unit) {
	if u.Find("LONGSTRN") >= 0 {
		return
	}
	u.Append(card.Card{
		Kind:     card.KindValue,
		Keyword:  "LONGSTRN",
		Value:    "OGIP 1.0",
		IsString: true,
		Comment:  "long string convention in use",
	})
}

// Remove deletes the record stored under keyword.
func (h *Header) Remove(keyword string) error {
	u, err := h.hdu.editUnit()
	if err != nil {
		return err
	}
	i := u.Find(keyword)
	if i < 0 {
		return fmt.Errorf("keyword %s: %w", keyword, ErrKeywordNotFound)
	}
	u.Remove(i)
	return nil
}

// WriteComment appends a COMMENT record. Commentary records carry no value
// and may repeat.
func (h *Header) WriteComment(text string) error {
	return h.writeCommentary("COMMENT", text)
}

// WriteHistory appends a HISTORY record.
func (h *Header) WriteHistory(text string) error {
	return h.writeCommentary("HISTORY", text)
}

func (h *Header) writeCommentary(keyword, text string) error {
	u, err := h.hdu.editUnit()
	if err != nil {
		return err
	}
	u.Append(card.Card{Kind: card.KindCommentary, Keyword: keyword, Comment: text})
	return nil
}

// AnyRecord is the type-erased view of a Record, for writing
// heterogeneous sequences. Only Record values implement it.
type AnyRecord interface {
	// RecordKeyword returns the record's keyword.
	RecordKeyword() string
	writeTo(h *Header, mode WriteMode) error
}

// RecordKeyword returns the record's keyword.
func (r Record[T]) RecordKeyword() string { return r.Keyword }

func (r Record[T]) writeTo(h *Header, mode WriteMode) error {
	return WriteRecord(h, r, mode)
}

// RecordTarget is the type-erased view of a *Record for batch parsing.
// The target's Keyword selects the record to read. Only *Record values
// implement it.
type RecordTarget interface {
	// RecordKeyword returns the target's keyword.
	RecordKeyword() string
	readFrom(h *Header) error
}

func (r *Record[T]) readFrom(h *Header) error {
	parsed, err := readRecord[T](h, r.Keyword, r.Unit)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// WriteSeq writes several records with one mode. The batch is not atomic:
// on failure, records already written stay written.
func (h *Header) WriteSeq(mode WriteMode, records ...AnyRecord) error {
	for _, r := range records {
		if err := r.writeTo(h, mode); err != nil {
			return err
		}
	}
	return nil
}

// ParseSeq fills several typed records, selected by their Keyword fields.
// Like WriteSeq it stops at the first failure, leaving earlier targets
// filled.
func (h *Header) ParseSeq(targets ...RecordTarget) error {
	for _, t := range targets {
		if err := t.readFrom(h); err != nil {
			return err
		}
	}
	return nil
}

// ParseStruct fills dest, a pointer to a struct whose fields carry
// `fits:"KEYWORD"` tags, from the header. Supported field types are the
// Value set; untagged fields are skipped.
func (h *Header) ParseStruct(dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("ParseStruct needs a pointer to struct, got %T", dest)
	}
	u, err := h.hdu.unit()
	if err != nil {
		return err
	}
	elem := v.Elem()
	for i := 0; i < elem.NumField(); i++ {
		keyword, ok := elem.Type().Field(i).Tag.Lookup("fits")
		if !ok {
			continue
		}
		idx := u.Find(keyword)
		if idx < 0 {
			return fmt.Errorf("keyword %s: %w", keyword, ErrKeywordNotFound)
		}
		if err := assignField(elem.Field(i), u.Card(idx)); err != nil {
			return err
		}
	}
	return nil
}

// assignField coerces a card value into one struct field.
func assignField(field reflect.Value, c card.Card) error {
	mismatch := fmt.Errorf("keyword %s: cannot read %q into %s field: %w",
		c.Keyword, c.Value, field.Kind(), ErrTypeMismatch)
	switch field.Kind() {
	case reflect.String:
		if !c.IsString {
			return mismatch
		}
		field.SetString(c.Value)
	case reflect.Bool:
		switch c.Value {
		case "T":
			field.SetBool(true)
		case "F":
			field.SetBool(false)
		default:
			return mismatch
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		i, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil || field.OverflowInt(i) {
			return mismatch
		}
		field.SetInt(i)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		u, err := strconv.ParseUint(c.Value, 10, 64)
		if err != nil || field.OverflowUint(u) {
			return mismatch
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return mismatch
		}
		field.SetFloat(f)
	case reflect.Complex64, reflect.Complex128:
		re, im, err := parseComplex(c.Value, 64)
		if err != nil {
			return mismatch
		}
		field.SetComplex(complex(re, im))
	default:
		return fmt.Errorf("keyword %s: unsupported field kind %s", c.Keyword, field.Kind())
	}
	return nil
}
