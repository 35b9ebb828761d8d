package fits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-fits/internal/card"
	"github.com/robert-malhotra/go-fits/internal/engine"
	"github.com/robert-malhotra/go-fits/internal/typecode"
)

// ImageHDU is a handle onto an image extension: one header plus an
// N-dimensional pixel data unit.
type ImageHDU struct {
	*HDU
}

// ReadShape returns the image shape declared by the NAXIS keywords.
// shape[0] is NAXIS1, the fastest-varying axis of the row-major in-memory
// order; the disk keyword list and the in-memory Position agree axis by
// axis under this convention.
func (h *ImageHDU) ReadShape() (Position, error) {
	u, err := h.unit()
	if err != nil {
		return nil, err
	}
	return readShape(u)
}

func readShape(u *engine.Unit) (Position, error) {
	naxis, ok, err := u.IntValue("NAXIS")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("keyword NAXIS: %w", ErrKeywordNotFound)
	}
	shape := make(Position, naxis)
	for i := range shape {
		n, ok, err := u.IntValue("NAXIS" + strconv.Itoa(i+1))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("keyword NAXIS%d: %w", i+1, ErrKeywordNotFound)
		}
		shape[i] = n
	}
	return shape, nil
}

// Reshape redeclares the image shape, resizing the data unit (zero
// filled when growing). The pixel type is untouched.
func (h *ImageHDU) Reshape(shape Position) error {
	if err := validShape(shape); err != nil {
		return err
	}
	u, err := h.editUnit()
	if err != nil {
		return err
	}
	bitpix, ok, err := u.IntValue("BITPIX")
	if err != nil || !ok {
		return fmt.Errorf("keyword BITPIX: %w", ErrKeywordNotFound)
	}
	writeShapeCards(u, shape)
	size := bitpix
	if size < 0 {
		size = -size
	}
	u.Resize(ShapeSize(shape) * size / 8)
	return nil
}

// writeShapeCards updates NAXIS and the NAXISn list in place, removing
// stale axes when the rank shrinks.
func writeShapeCards(u *engine.Unit, shape Position) {
	setInt := func(keyword string, v int64) {
		c := card.Card{Kind: card.KindValue, Keyword: keyword, Value: strconv.FormatInt(v, 10)}
		if i := u.Find(keyword); i >= 0 {
			c.Comment = u.Card(i).Comment
			u.Set(i, c)
		} else {
			// Keep the axis list contiguous after NAXIS.
			u.Insert(u.Find("NAXIS")+axisOrdinal(keyword), c)
		}
	}
	setInt("NAXIS", int64(len(shape)))
	for i, extent := range shape {
		setInt("NAXIS"+strconv.Itoa(i+1), extent)
	}
	// Drop axes beyond the new rank.
	for i := len(shape) + 1; ; i++ {
		idx := u.Find("NAXIS" + strconv.Itoa(i))
		if idx < 0 {
			break
		}
		u.Remove(idx)
	}
}

// axisOrdinal returns n for NAXISn keywords and 0 for NAXIS itself.
func axisOrdinal(keyword string) int {
	if keyword == "NAXIS" {
		return 0
	}
	n, _ := strconv.Atoi(keyword[len("NAXIS"):])
	return n
}

// ReadRaster reads the whole pixel array as an owning raster of T. The
// declared BITPIX and BZERO must match T's registry entry, otherwise the
// read fails with ErrTypeMismatch.
func ReadRaster[T Numeric](h *ImageHDU) (*Raster[T], error) {
	u, err := h.unit()
	if err != nil {
		return nil, err
	}
	if err := checkPixelType[T](h.index, u); err != nil {
		return nil, err
	}
	shape, err := readShape(u)
	if err != nil {
		return nil, err
	}
	raster, err := NewRaster[T](shape)
	if err != nil {
		return nil, err
	}
	code := typecode.Of[T]()
	want := raster.Size() * int64(code.Size)
	if u.DataSize() != want {
		return nil, fmt.Errorf("HDU %d: data unit holds %d bytes, shape needs %d: %w",
			h.index, u.DataSize(), want, ErrShapeMismatch)
	}
	typecode.DecodePixels(raster.Data(), u.Data())
	return raster, nil
}

// ReadRasterN is ReadRaster with a compile-site arity expectation.
func ReadRasterN[T Numeric](h *ImageHDU, rank int) (*Raster[T], error) {
	raster, err := ReadRaster[T](h)
	if err != nil {
		return nil, err
	}
	if raster.Rank() != rank {
		return nil, fmt.Errorf("HDU %d: image has rank %d, caller expects %d: %w",
			h.index, raster.Rank(), rank, ErrShapeMismatch)
	}
	return raster, nil
}

// WriteRaster writes the whole pixel array. The raster shape must match
// the declared shape; Reshape first when it does not. Owning and viewing
// rasters are both accepted.
func WriteRaster[T Numeric](h *ImageHDU, raster *Raster[T]) error {
	u, err := h.editUnit()
	if err != nil {
		return err
	}
	if err := checkPixelType[T](h.index, u); err != nil {
		return err
	}
	declared, err := readShape(u)
	if err != nil {
		return err
	}
	if !samePosition(declared, raster.Shape()) {
		return fmt.Errorf("HDU %d: raster shape %v does not match declared shape %v: %w",
			h.index, raster.Shape(), declared, ErrShapeMismatch)
	}
	code := typecode.Of[T]()
	buf := make([]byte, raster.Size()*int64(code.Size))
	typecode.EncodePixels(buf, raster.Data())
	u.SetData(buf)
	return nil
}

func samePosition(a, b Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkPixelType verifies that the declared BITPIX and BZERO select T.
func checkPixelType[T Numeric](index int, u *engine.Unit) error {
	code := typecode.Of[T]()
	bitpix, ok, err := u.IntValue("BITPIX")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("HDU %d: keyword BITPIX: %w", index, ErrKeywordNotFound)
	}
	if int(bitpix) != code.Bitpix {
		return fmt.Errorf("HDU %d: BITPIX %d does not store %s pixels: %w",
			index, bitpix, typeName[T](), ErrTypeMismatch)
	}
	bzero := 0.0
	if text, ok := u.StringValue("BZERO"); ok {
		bzero, err = strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("HDU %d: malformed BZERO %q", index, text)
		}
	}
	if bzero != code.BZero {
		return fmt.Errorf("HDU %d: BZERO %v does not store %s pixels: %w",
			index, bzero, typeName[T](), ErrTypeMismatch)
	}
	return nil
}

func typeName[T Value]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// imageCards builds the structural header of an image unit. primary
// selects SIMPLE over XTENSION.
func imageCards[T Numeric](primary bool, name string, shape Position) []card.Card {
	code := typecode.Of[T]()
	cards := []card.Card{}
	if primary {
		cards = append(cards, card.Card{Kind: card.KindValue, Keyword: "SIMPLE", Value: "T", Comment: "conforms to the FITS standard"})
	} else {
		cards = append(cards, card.Card{Kind: card.KindValue, Keyword: "XTENSION", Value: "IMAGE", IsString: true, Comment: "image extension"})
	}
	cards = append(cards,
		card.Card{Kind: card.KindValue, Keyword: "BITPIX", Value: strconv.Itoa(code.Bitpix), Comment: "bits per pixel"},
		card.Card{Kind: card.KindValue, Keyword: "NAXIS", Value: strconv.Itoa(len(shape)), Comment: "number of axes"})
	for i, extent := range shape {
		cards = append(cards, card.Card{Kind: card.KindValue, Keyword: "NAXIS" + strconv.Itoa(i+1), Value: strconv.FormatInt(extent, 10)})
	}
	if primary {
		cards = append(cards, card.Card{Kind: card.KindValue, Keyword: "EXTEND", Value: "T", Comment: "extensions may follow"})
	} else {
		cards = append(cards,
			card.Card{Kind: card.KindValue, Keyword: "PCOUNT", Value: "0"},
			card.Card{Kind: card.KindValue, Keyword: "GCOUNT", Value: "1"})
	}
	if code.BZero != 0 {
		cards = append(cards,
			card.Card{Kind: card.KindValue, Keyword: "BZERO", Value: strconv.FormatFloat(code.BZero, 'E', -1, 64), Comment: "offset for unsigned pixels"},
			card.Card{Kind: card.KindValue, Keyword: "BSCALE", Value: "1", Comment: "pixel scaling"})
	}
	if name != "" {
		cards = append(cards, card.Card{Kind: card.KindValue, Keyword: "EXTNAME", Value: name, IsString: true})
	}
	return cards
}

// structuralImageKeyword reports whether a keyword belongs to the image
// structure writer rather than to the user.
func structuralImageKeyword(k string) bool {
	switch k {
	case "SIMPLE", "XTENSION", "BITPIX", "NAXIS", "EXTEND", "PCOUNT", "GCOUNT", "BZERO", "BSCALE":
		return true
	}
	if rest, ok := strings.CutPrefix(k, "NAXIS"); ok && rest != "" {
		if _, err := strconv.Atoi(rest); err == nil {
			return true
		}
	}
	return false
}

// resetImageUnit redeclares the structural cards for pixel type T and the
// given shape, keeping every non-structural record in place after them.
// An existing EXTNAME survives when name is empty.
func resetImageUnit[T Numeric](u *engine.Unit, primary bool, name string, shape Position) {
	if name == "" {
		if i := u.Find("EXTNAME"); i >= 0 {
			name = u.Card(i).Value
		}
	}
	fresh := imageCards[T](primary, name, shape)
	for _, c := range u.Cards() {
		if c.Kind == card.KindValue && (structuralImageKeyword(c.Keyword) || c.Keyword == "EXTNAME") {
			continue
		}
		fresh = append(fresh, c)
	}
	u.SetCards(fresh)
}
