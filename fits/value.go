package fits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-fits/internal/card"
)

// formatValue renders a typed value as the source text of a card value
// field. isString selects the quoted encoding.
func formatValue[T Value](v T) (text string, isString bool) {
	switch x := any(v).(type) {
	case bool:
		if x {
			return "T", false
		}
		return "F", false
	case uint8:
		return strconv.FormatUint(uint64(x), 10), false
	case int8:
		return strconv.FormatInt(int64(x), 10), false
	case int16:
		return strconv.FormatInt(int64(x), 10), false
	case uint16:
		return strconv.FormatUint(uint64(x), 10), false
	case int32:
		return strconv.FormatInt(int64(x), 10), false
	case uint32:
		return strconv.FormatUint(uint64(x), 10), false
	case int64:
		return strconv.FormatInt(x, 10), false
	case uint64:
		return strconv.FormatUint(x, 10), false
	case float32:
		return strconv.FormatFloat(float64(x), 'E', -1, 32), false
	case float64:
		return strconv.FormatFloat(x, 'E', -1, 64), false
	case complex64:
		return "(" + strconv.FormatFloat(float64(real(x)), 'E', -1, 32) +
			", " + strconv.FormatFloat(float64(imag(x)), 'E', -1, 32) + ")", false
	case complex128:
		return "(" + strconv.FormatFloat(real(x), 'E', -1, 64) +
			", " + strconv.FormatFloat(imag(x), 'E', -1, 64) + ")", false
	case string:
		return x, true
	}
	return "", false
}

// parseValue coerces a card's value field to T. Failures are reported as
// ErrTypeMismatch carrying the keyword and the offending text.
func parseValue[T Value](c card.Card) (T, error) {
	var v T
	mismatch := func() (T, error) {
		return v, fmt.Errorf("keyword %s: cannot read %q as %T: %w", c.Keyword, c.Value, v, ErrTypeMismatch)
	}
	if _, wantString := any(v).(string); wantString != c.IsString {
		return mismatch()
	}
	switch p := any(&v).(type) {
	case *string:
		*p = c.Value
	case *bool:
		switch c.Value {
		case "T":
			*p = true
		case "F":
			*p = false
		default:
			return mismatch()
		}
	case *uint8:
		u, err := strconv.ParseUint(c.Value, 10, 8)
		if err != nil {
			return mismatch()
		}
		*p = uint8(u)
	case *int8:
		i, err := strconv.ParseInt(c.Value, 10, 8)
		if err != nil {
			return mismatch()
		}
		*p = int8(i)
	case *int16:
		i, err := strconv.ParseInt(c.Value, 10, 16)
		if err != nil {
			return mismatch()
		}
		*p = int16(i)
	case *uint16:
		u, err := strconv.ParseUint(c.Value, 10, 16)
		if err != nil {
			return mismatch()
		}
		*p = uint16(u)
	case *int32:
		i, err := strconv.ParseInt(c.Value, 10, 32)
		if err != nil {
			return mismatch()
		}
		*p = int32(i)
	case *uint32:
		u, err := strconv.ParseUint(c.Value, 10, 32)
		if err != nil {
			return mismatch()
		}
		*p = uint32(u)
	case *int64:
		i, err := strconv.ParseInt(c.Value, 10, 64)
		if err != nil {
			return mismatch()
		}
		*p = i
	case *uint64:
		u, err := strconv.ParseUint(c.Value, 10, 64)
		if err != nil {
			return mismatch()
		}
		*p = u
	case *float32:
		f, err := strconv.ParseFloat(c.Value, 32)
		if err != nil {
			return mismatch()
		}
		*p = float32(f)
	case *float64:
		f, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return mismatch()
		}
		*p = f
	case *complex64:
		re, im, err := parseComplex(c.Value, 32)
		if err != nil {
			return mismatch()
		}
		*p = complex(float32(re), float32(im))
	case *complex128:
		re, im, err := parseComplex(c.Value, 64)
		if err != nil {
			return mismatch()
		}
		*p = complex(re, im)
	}
	return v, nil
}

// parseComplex reads the "(re, im)" form; a bare number is taken as a
// purely real value.
func parseComplex(s string, bits int) (re, im float64, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") {
		re, err = strconv.ParseFloat(s, bits)
		return re, 0, err
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed complex value %q", s)
	}
	re, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), bits)
	if err != nil {
		return 0, 0, err
	}
	im, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), bits)
	return re, im, err
}
