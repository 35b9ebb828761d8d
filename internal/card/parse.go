package card

import (
	"fmt"
	"strings"
)

// Decode parses a header's card images (END excluded) into logical cards,
// folding CONTINUE images into the string card they extend.
func Decode(data []byte) ([]Card, error) {
	if len(data)%Width != 0 {
		return nil, fmt.Errorf("header length %d is not a multiple of the card width", len(data))
	}
	var cards []Card
	var pending *Card // string card awaiting CONTINUE images
	for off := 0; off < len(data); off += Width {
		img := data[off : off+Width]
		c, continued, err := parseImage(img)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", off/Width, err)
		}
		if c.Keyword == "CONTINUE" {
			if pending == nil {
				return nil, fmt.Errorf("card %d: CONTINUE without a preceding string card", off/Width)
			}
			pending.Value += c.Value
			if c.Comment != "" {
				pending.Comment = c.Comment
			}
			if !continued {
				cards = append(cards, *pending)
				pending = nil
			}
			continue
		}
		if pending != nil {
			// Continuation chain was cut short; keep what we have.
			cards = append(cards, *pending)
			pending = nil
		}
		if continued {
			carry := c
			pending = &carry
			continue
		}
		cards = append(cards, c)
	}
	if pending != nil {
		cards = append(cards, *pending)
	}
	return cards, nil
}

// parseImage parses one 80-byte image. continued reports that a quoted
// value ends with the continuation ampersand.
func parseImage(img []byte) (Card, bool, error) {
	keyword := strings.TrimRight(string(img[0:8]), " ")
	if IsCommentaryKeyword(keyword) {
		return Card{
			Kind:    KindCommentary,
			Keyword: keyword,
			Comment: strings.TrimRight(string(img[8:]), " "),
		}, false, nil
	}

	var field string
	switch {
	case keyword == "HIERARCH":
		rest := string(img[9:])
		eq := strings.Index(rest, "= ")
		if eq < 0 {
			return Card{}, false, fmt.Errorf("HIERARCH card has no value indicator")
		}
		keyword = strings.TrimSpace(rest[:eq])
		field = rest[eq+2:]
	case keyword == "CONTINUE":
		field = string(img[valueCol:])
	default:
		if string(img[8:10]) != "= " {
			// Keyword without a value indicator: treat as commentary text.
			return Card{
				Kind:    KindCommentary,
				Keyword: keyword,
				Comment: strings.TrimRight(string(img[8:]), " "),
			}, false, nil
		}
		field = string(img[valueCol:])
	}

	c := Card{Kind: KindValue, Keyword: keyword}
	field = strings.TrimLeft(field, " ")
	if strings.HasPrefix(field, "'") {
		value, rest, err := unquote(field)
		if err != nil {
			return Card{}, false, fmt.Errorf("keyword %q: %w", keyword, err)
		}
		c.IsString = true
		c.Comment = trailingComment(rest)
		if strings.HasSuffix(value, "&") {
			c.Value = strings.TrimSuffix(value, "&")
			return c, true, nil
		}
		c.Value = value
		return c, false, nil
	}

	if slash := strings.IndexByte(field, '/'); slash >= 0 {
		c.Value = strings.TrimSpace(field[:slash])
		c.Comment = strings.TrimRight(strings.TrimPrefix(field[slash+1:], " "), " ")
	} else {
		c.Value = strings.TrimSpace(field)
	}
	return c, false, nil
}

// unquote extracts a quoted value, undoing the '' escape, and returns the
// remainder of the field after the closing quote. Trailing spaces inside
// the quotes are not significant and are trimmed.
func unquote(field string) (value, rest string, err error) {
	var b strings.Builder
	i := 1
	for i < len(field) {
		if field[i] != '\'' {
			b.WriteByte(field[i])
			i++
			continue
		}
		if i+1 < len(field) && field[i+1] == '\'' {
			b.WriteByte('\'')
			i += 2
			continue
		}
		return strings.TrimRight(b.String(), " "), field[i+1:], nil
	}
	return "", "", fmt.Errorf("unterminated string value")
}

// trailingComment extracts the comment after a slash in the remainder of a
// value field.
func trailingComment(rest string) string {
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimPrefix(rest[slash+1:], " "), " ")
}
