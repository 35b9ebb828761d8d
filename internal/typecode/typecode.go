package typecode

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the closed set of element types supported by the library.
// Constraining on Value makes an unsupported type a compile error.
type Value interface {
	bool | uint8 | int8 | int16 | uint16 | int32 | uint32 |
		int64 | uint64 | float32 | float64 | complex64 | complex128 | string
}

// Numeric is the subset of Value valid for image pixels. FITS images have no
// boolean, string or complex BITPIX.
type Numeric interface {
	uint8 | int8 | int16 | uint16 | int32 | uint32 |
		int64 | uint64 | float32 | float64
}

// Code describes how one element type is encoded on disk.
type Code struct {
	// Letter is the TFORMn type letter. S, U, V and W are the CFITSIO
	// local convention for signed bytes and unsigned integers.
	Letter byte
	// Size is the on-disk size of one element in bytes. Strings have
	// Size 1: their byte width is the repeat count.
	Size int
	// Bitpix is the image pixel code, or 0 for types with no image form.
	Bitpix int
	// BZero is the offset declared when an image stores this type as its
	// signed (or unsigned, for int8) counterpart. 0 means no offset.
	BZero float64
}

// Of returns the registry entry for T. The switch is over the closed Value
// set only; the constraint rejects everything else at compile time.
func Of[T Value]() Code {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Code{Letter: 'L', Size: 1}
	case uint8:
		return Code{Letter: 'B', Size: 1, Bitpix: 8}
	case int8:
		return Code{Letter: 'S', Size: 1, Bitpix: 8, BZero: -128}
	case int16:
		return Code{Letter: 'I', Size: 2, Bitpix: 16}
	case uint16:
		return Code{Letter: 'U', Size: 2, Bitpix: 16, BZero: 32768}
	case int32:
		return Code{Letter: 'J', Size: 4, Bitpix: 32}
	case uint32:
		return Code{Letter: 'V', Size: 4, Bitpix: 32, BZero: 2147483648}
	case int64:
		return Code{Letter: 'K', Size: 8, Bitpix: 64}
	case uint64:
		return Code{Letter: 'W', Size: 8, Bitpix: 64, BZero: 9223372036854775808}
	case float32:
		return Code{Letter: 'E', Size: 4, Bitpix: -32}
	case float64:
		return Code{Letter: 'D', Size: 8, Bitpix: -64}
	case complex64:
		return Code{Letter: 'C', Size: 8}
	case complex128:
		return Code{Letter: 'M', Size: 16}
	case string:
		return Code{Letter: 'A', Size: 1}
	}
	// Unreachable: the constraint is exhaustive.
	panic("typecode: unsupported type")
}

// Bitpix returns the image pixel code for T.
func Bitpix[T Numeric]() int {
	return Of[T]().Bitpix
}

// TForm builds the column format string for T with the given repeat count.
// The count is omitted when 1, except for strings where it is the mandatory
// character width.
func (c Code) TForm(repeat int64) string {
	if repeat == 1 && c.Letter != 'A' {
		return string(c.Letter)
	}
	return strconv.FormatInt(repeat, 10) + string(c.Letter)
}

// ParseTForm splits a TFORMn value into its repeat count and type letter.
func ParseTForm(s string) (repeat int64, letter byte, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty column format")
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	repeat = 1
	if i > 0 {
		repeat, err = strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid repeat count in %q: %w", s, err)
		}
	}
	if i == len(s) {
		return 0, 0, fmt.Errorf("missing type letter in column format %q", s)
	}
	return repeat, s[i], nil
}

// LetterSize returns the on-disk element size for a TFORM type letter.
func LetterSize(letter byte) (int, error) {
	switch letter {
	case 'L', 'B', 'S', 'A', 'X':
		return 1, nil
	case 'I', 'U':
		return 2, nil
	case 'J', 'V', 'E':
		return 4, nil
	case 'K', 'W', 'D', 'C':
		return 8, nil
	case 'M':
		return 16, nil
	default:
		return 0, fmt.Errorf("unknown column type letter %q", string(letter))
	}
}

// PutElem encodes one element into b, which must be exactly the element's
// field width. Strings are copied and padded with spaces to the field width.
func PutElem[T Value](b []byte, v T) {
	switch x := any(v).(type) {
	case bool:
		if x {
			b[0] = 'T'
		} else {
			b[0] = 'F'
		}
	case uint8:
		b[0] = x
	case int8:
		b[0] = byte(x)
	case int16:
		binary.BigEndian.PutUint16(b, uint16(x))
	case uint16:
		binary.BigEndian.PutUint16(b, x)
	case int32:
		binary.BigEndian.PutUint32(b, uint32(x))
	case uint32:
		binary.BigEndian.PutUint32(b, x)
	case int64:
		binary.BigEndian.PutUint64(b, uint64(x))
	case uint64:
		binary.BigEndian.PutUint64(b, x)
	case float32:
		binary.BigEndian.PutUint32(b, math.Float32bits(x))
	case float64:
		binary.BigEndian.PutUint64(b, math.Float64bits(x))
	case complex64:
		binary.BigEndian.PutUint32(b, math.Float32bits(real(x)))
		binary.BigEndian.PutUint32(b[4:], math.Float32bits(imag(x)))
	case complex128:
		binary.BigEndian.PutUint64(b, math.Float64bits(real(x)))
		binary.BigEndian.PutUint64(b[8:], math.Float64bits(imag(x)))
	case string:
		n := copy(b, x)
		for i := n; i < len(b); i++ {
			b[i] = ' '
		}
	}
}

// GetElem decodes one element from b, the element's field width. Strings
// are returned with trailing spaces trimmed, per the FITS padding rule.
func GetElem[T Value](b []byte) T {
	var v T
	switch p := any(&v).(type) {
	case *bool:
		*p = b[0] == 'T'
	case *uint8:
		*p = b[0]
	case *int8:
		*p = int8(b[0])
	case *int16:
		*p = int16(binary.BigEndian.Uint16(b))
	case *uint16:
		*p = binary.BigEndian.Uint16(b)
	case *int32:
		*p = int32(binary.BigEndian.Uint32(b))
	case *uint32:
		*p = binary.BigEndian.Uint32(b)
	case *int64:
		*p = int64(binary.BigEndian.Uint64(b))
	case *uint64:
		*p = binary.BigEndian.Uint64(b)
	case *float32:
		*p = math.Float32frombits(binary.BigEndian.Uint32(b))
	case *float64:
		*p = math.Float64frombits(binary.BigEndian.Uint64(b))
	case *complex64:
		re := math.Float32frombits(binary.BigEndian.Uint32(b))
		im := math.Float32frombits(binary.BigEndian.Uint32(b[4:]))
		*p = complex(re, im)
	case *complex128:
		re := math.Float64frombits(binary.BigEndian.Uint64(b))
		im := math.Float64frombits(binary.BigEndian.Uint64(b[8:]))
		*p = complex(re, im)
	case *string:
		s := string(b)
		// A NUL terminates the field (zero-filled rows read as empty).
		if nul := strings.IndexByte(s, 0); nul >= 0 {
			s = s[:nul]
		}
		*p = strings.TrimRight(s, " ")
	}
	return v
}

// PutPixel encodes one image pixel. Types with a BZero offset are stored as
// their native-width counterpart with the sign bit flipped, which is exactly
// the physical-minus-BZERO transform for power-of-two offsets.
func PutPixel[T Numeric](b []byte, v T) {
	switch x := any(v).(type) {
	case uint8:
		b[0] = x
	case int8:
		b[0] = byte(x) ^ 0x80
	case int16:
		binary.BigEndian.PutUint16(b, uint16(x))
	case uint16:
		binary.BigEndian.PutUint16(b, x^0x8000)
	case int32:
		binary.BigEndian.PutUint32(b, uint32(x))
	case uint32:
		binary.BigEndian.PutUint32(b, x^0x80000000)
	case int64:
		binary.BigEndian.PutUint64(b, uint64(x))
	case uint64:
		binary.BigEndian.PutUint64(b, x^0x8000000000000000)
	case float32:
		binary.BigEndian.PutUint32(b, math.Float32bits(x))
	case float64:
		binary.BigEndian.PutUint64(b, math.Float64bits(x))
	}
}

// GetPixel decodes one image pixel, undoing the BZero sign flip.
func GetPixel[T Numeric](b []byte) T {
	var v T
	switch p := any(&v).(type) {
	case *uint8:
		*p = b[0]
	case *int8:
		*p = int8(b[0] ^ 0x80)
	case *int16:
		*p = int16(binary.BigEndian.Uint16(b))
	case *uint16:
		*p = binary.BigEndian.Uint16(b) ^ 0x8000
	case *int32:
		*p = int32(binary.BigEndian.Uint32(b))
	case *uint32:
		*p = binary.BigEndian.Uint32(b) ^ 0x80000000
	case *int64:
		*p = int64(binary.BigEndian.Uint64(b))
	case *uint64:
		*p = binary.BigEndian.Uint64(b) ^ 0x8000000000000000
	case *float32:
		*p = math.Float32frombits(binary.BigEndian.Uint32(b))
	case *float64:
		*p = math.Float64frombits(binary.BigEndian.Uint64(b))
	}
	return v
}

// EncodePixels encodes a full pixel buffer into dst, which must be
// len(src) * element size bytes.
func EncodePixels[T Numeric](dst []byte, src []T) {
	size := Of[T]().Size
	for i, v := range src {
		PutPixel(dst[i*size:(i+1)*size], v)
	}
}

// DecodePixels decodes a full pixel buffer from src into dst.
func DecodePixels[T Numeric](dst []T, src []byte) {
	size := Of[T]().Size
	for i := range dst {
		dst[i] = GetPixel[T](src[i*size : (i+1)*size])
	}
}
