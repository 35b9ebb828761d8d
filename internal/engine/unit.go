package engine

import (
	"fmt"
	"strconv"

	"github.com/robert-malhotra/go-fits/internal/card"
)

// Unit is one header-data unit: an ordered card list plus the raw bytes of
// its data unit (logical length, block padding is applied on serialization).
type Unit struct {
	cards []card.Card
	data  []byte
}

// NewUnit returns an empty unit.
func NewUnit() *Unit {
	return &Unit{}
}

// CardCount returns the number of logical cards.
func (u *Unit) CardCount() int {
	return len(u.cards)
}

// Card returns the card at index i.
func (u *Unit) Card(i int) card.Card {
	return u.cards[i]
}

// Cards returns the card list. The slice is shared; callers must not
// mutate it.
func (u *Unit) Cards() []card.Card {
	return u.cards
}

// Find returns the index of the first valued card with the given keyword,
// or -1. Commentary cards are never matched.
func (u *Unit) Find(keyword string) int {
	for i, c := range u.cards {
		if c.Kind == card.KindValue && c.Keyword == keyword {
			return i
		}
	}
	return -1
}

// Append adds a card at the end of the header.
func (u *Unit) Append(c card.Card) {
	u.cards = append(u.cards, c)
}

// Insert adds a card at index i, shifting later cards.
func (u *Unit) Insert(i int, c card.Card) {
	u.cards = append(u.cards, card.Card{})
	copy(u.cards[i+1:], u.cards[i:])
	u.cards[i] = c
}

// Set replaces the card at index i.
func (u *Unit) Set(i int, c card.Card) {
	u.cards[i] = c
}

// SetCards replaces the whole card list. The unit takes ownership of the
// slice.
func (u *Unit) SetCards(cards []card.Card) {
	u.cards = cards
}

// Remove deletes the card at index i.
func (u *Unit) Remove(i int) {
	u.cards = append(u.cards[:i], u.cards[i+1:]...)
}

// IntValue parses the value of a keyword as an integer. ok is false when
// the keyword is absent.
func (u *Unit) IntValue(keyword string) (v int64, ok bool, err error) {
	i := u.Find(keyword)
	if i < 0 {
		return 0, false, nil
	}
	v, err = strconv.ParseInt(u.cards[i].Value, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("keyword %s: %w", keyword, err)
	}
	return v, true, nil
}

// StringValue returns the value text of a keyword. ok is false when absent.
func (u *Unit) StringValue(keyword string) (string, bool) {
	i := u.Find(keyword)
	if i < 0 {
		return "", false
	}
	return u.cards[i].Value, true
}

// Data returns the raw data-unit bytes. The slice is shared with the unit.
func (u *Unit) Data() []byte {
	return u.data
}

// SetData replaces the data-unit bytes.
func (u *Unit) SetData(data []byte) {
	u.data = data
}

// DataSize returns the logical data-unit size in bytes.
func (u *Unit) DataSize() int64 {
	return int64(len(u.data))
}

// Resize grows (zero-filled) or shrinks the data unit to n bytes.
func (u *Unit) Resize(n int64) {
	switch {
	case n <= int64(len(u.data)):
		u.data = u.data[:n]
	case n <= int64(cap(u.data)):
		old := len(u.data)
		u.data = u.data[:n]
		for i := old; i < int(n); i++ {
			u.data[i] = 0
		}
	default:
		grown := make([]byte, n)
		copy(grown, u.data)
		u.data = grown
	}
}

// dataSizeFromCards computes the data-unit byte size declared by the
// structural keywords of a parsed header.
func dataSizeFromCards(u *Unit) (int64, error) {
	bitpix, ok, err := u.IntValue("BITPIX")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("header has no BITPIX")
	}
	naxis, ok, err := u.IntValue("NAXIS")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("header has no NAXIS")
	}
	if naxis == 0 {
		return 0, nil
	}
	elems := int64(1)
	for i := int64(1); i <= naxis; i++ {
		n, ok, err := u.IntValue("NAXIS" + strconv.FormatInt(i, 10))
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("header has NAXIS=%d but no NAXIS%d", naxis, i)
		}
		elems *= n
	}
	pcount, ok, err := u.IntValue("PCOUNT")
	if err != nil {
		return 0, err
	}
	if !ok {
		pcount = 0
	}
	gcount, ok, err := u.IntValue("GCOUNT")
	if err != nil {
		return 0, err
	}
	if !ok {
		gcount = 1
	}
	abs := bitpix
	if abs < 0 {
		abs = -abs
	}
	bits := abs * gcount * (pcount + elems)
	return bits / 8, nil
}

// Serialize renders the unit as on-disk bytes: header cards plus END,
// padded with spaces to a block boundary, followed by the data unit padded
// with zeros to a block boundary.
func (u *Unit) Serialize() ([]byte, error) {
	var out []byte
	for _, c := range u.cards {
		img, err := card.Format(c)
		if err != nil {
			return nil, err
		}
		out = append(out, img...)
	}
	out = append(out, card.End()...)
	for len(out)%BlockSize != 0 {
		out = append(out, ' ')
	}
	out = append(out, u.data...)
	for len(out)%BlockSize != 0 {
		out = append(out, 0)
	}
	return out, nil
}

// HeaderText renders the header cards as human-readable card images, one
// per line, without block padding.
func (u *Unit) HeaderText() (string, error) {
	var out []byte
	for _, c := range u.cards {
		img, err := card.Format(c)
		if err != nil {
			return "", err
		}
		for off := 0; off < len(img); off += card.Width {
			out = append(out, img[off:off+card.Width]...)
			out = append(out, '\n')
		}
	}
	return string(out), nil
}
