package fits

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/robert-malhotra/go-fits/internal/card"
	"github.com/robert-malhotra/go-fits/internal/checksum"
	"github.com/robert-malhotra/go-fits/internal/engine"
)

// HDUKind discriminates the two extension kinds.
type HDUKind int

const (
	// KindImage is an image extension (or the Primary).
	KindImage HDUKind = iota
	// KindBintable is a binary-table extension.
	KindBintable
)

// HDU is a positional handle onto one extension of an open file. Handles
// are thin: all state lives in the file, and a handle obtained before a
// Remove call may point at a shifted extension afterwards.
type HDU struct {
	file  *File
	index int
}

// Index returns the extension's position in the file.
func (h *HDU) Index() int {
	return h.index
}

// Header returns the record handler for this extension.
func (h *HDU) Header() *Header {
	return &Header{hdu: h}
}

// Name returns the EXTNAME value, or "" when the extension is unnamed.
func (h *HDU) Name() string {
	u, err := h.unit()
	if err != nil {
		return ""
	}
	if i := u.Find("EXTNAME"); i >= 0 {
		return u.Card(i).Value
	}
	return ""
}

// Kind returns the extension kind.
func (h *HDU) Kind() (HDUKind, error) {
	if h.index == 0 {
		return KindImage, nil
	}
	u, err := h.unit()
	if err != nil {
		return 0, err
	}
	xt, ok := u.StringValue("XTENSION")
	if !ok {
		return 0, fmt.Errorf("HDU %d has no XTENSION keyword", h.index)
	}
	switch xt {
	case "IMAGE":
		return KindImage, nil
	case "BINTABLE":
		return KindBintable, nil
	default:
		return 0, fmt.Errorf("HDU %d: unsupported extension type %q", h.index, xt)
	}
}

// AsImage narrows the handle to an image extension.
func (h *HDU) AsImage() (*ImageHDU, error) {
	kind, err := h.Kind()
	if err != nil {
		return nil, err
	}
	if kind != KindImage {
		return nil, fmt.Errorf("HDU %d: %w", h.index, ErrNotImage)
	}
	return &ImageHDU{HDU: h}, nil
}

// AsBintable narrows the handle to a binary-table extension.
func (h *HDU) AsBintable() (*BintableHDU, error) {
	kind, err := h.Kind()
	if err != nil {
		return nil, err
	}
	if kind != KindBintable {
		return nil, fmt.Errorf("HDU %d: %w", h.index, ErrNotBintable)
	}
	return &BintableHDU{HDU: h}, nil
}

// unit resolves the handle against the live extension list.
func (h *HDU) unit() (*engine.Unit, error) {
	u, err := h.file.eng.Unit(h.index)
	if err != nil {
		return nil, mapEngineErr(err)
	}
	return u, nil
}

// editUnit is unit plus the write-permission check and the edited
// notification to the owning file.
func (h *HDU) editUnit() (*engine.Unit, error) {
	if err := h.file.eng.CheckWritable(); err != nil {
		return nil, mapEngineErr(err)
	}
	u, err := h.unit()
	if err != nil {
		return nil, err
	}
	h.file.markEdited(h.index)
	return u, nil
}

// checksumPlaceholder is the CHECKSUM value the total sum is computed
// with, before the encoded value replaces it in place.
const checksumPlaceholder = "0000000000000000"

// UpdateChecksums recomputes and writes the DATASUM and CHECKSUM keywords
// of this extension.
func (h *HDU) UpdateChecksums() error {
	u, err := h.editUnit()
	if err != nil {
		return err
	}
	dataSum := checksum.Sum1s(0, padded(u.Data()))
	upsert := func(keyword, value, comment string) {
		c := card.Card{Kind: card.KindValue, Keyword: keyword, Value: value, IsString: true, Comment: comment}
		if i := u.Find(keyword); i >= 0 {
			u.Set(i, c)
		} else {
			u.Append(c)
		}
	}
	upsert("DATASUM", strconv.FormatUint(uint64(dataSum), 10), "data unit checksum")
	upsert("CHECKSUM", checksumPlaceholder, "HDU checksum")
	serialized, err := u.Serialize()
	if err != nil {
		return fmt.Errorf("HDU %d: %w", h.index, err)
	}
	total := checksum.Sum1s(0, serialized)
	i := u.Find("CHECKSUM")
	c := u.Card(i)
	c.Value = checksum.Encode(total)
	u.Set(i, c)
	return nil
}

// VerifyChecksums recomputes both sums and compares them with the stored
// keywords. Verification is opt-in; nothing is checked on open.
func (h *HDU) VerifyChecksums() error {
	u, err := h.unit()
	if err != nil {
		return err
	}
	i := u.Find("CHECKSUM")
	if i < 0 {
		return fmt.Errorf("HDU %d: keyword CHECKSUM: %w", h.index, ErrKeywordNotFound)
	}
	if j := u.Find("DATASUM"); j >= 0 {
		stored, err := strconv.ParseUint(u.Card(j).Value, 10, 32)
		if err != nil {
			return fmt.Errorf("HDU %d: malformed DATASUM %q", h.index, u.Card(j).Value)
		}
		if uint32(stored) != checksum.Sum1s(0, padded(u.Data())) {
			return fmt.Errorf("HDU %d: data unit: %w", h.index, ErrChecksum)
		}
	}
	serialized, err := u.Serialize()
	if err != nil {
		return fmt.Errorf("HDU %d: %w", h.index, err)
	}
	if !checksum.Verify(serialized) {
		return fmt.Errorf("HDU %d: %w", h.index, ErrChecksum)
	}
	return nil
}

// padded returns data extended with zeros to a block boundary, the form
// both sums are computed over.
func padded(data []byte) []byte {
	rem := len(data) % engine.BlockSize
	if rem == 0 {
		return data
	}
	return append(append([]byte(nil), data...), make([]byte, engine.BlockSize-rem)...)
}

// mapEngineErr translates engine sentinels into the public taxonomy.
func mapEngineErr(err error) error {
	switch {
	case errors.Is(err, engine.ErrReadOnly):
		return fmt.Errorf("%w", ErrReadOnly)
	case errors.Is(err, engine.ErrClosed):
		return fmt.Errorf("%w", ErrClosed)
	case errors.Is(err, engine.ErrNoUnit):
		return fmt.Errorf("%v: %w", err, ErrExtensionNotFound)
	default:
		return err
	}
}
