package card

import (
	"fmt"
	"strings"
)

// Format renders a logical card into one or more 80-byte images.
func Format(c Card) ([]byte, error) {
	switch c.Kind {
	case KindCommentary:
		return formatCommentary(c)
	case KindValue:
		if c.IsString {
			return formatString(c)
		}
		return formatValue(c)
	default:
		return nil, fmt.Errorf("unknown card kind %d", c.Kind)
	}
}

// End returns the END card image.
func End() []byte {
	img := blankImage()
	copy(img, "END")
	return img
}

func blankImage() []byte {
	img := make([]byte, Width)
	for i := range img {
		img[i] = ' '
	}
	return img
}

// formatCommentary writes COMMENT, HISTORY or blank cards, wrapping the
// text over as many images as needed.
func formatCommentary(c Card) ([]byte, error) {
	if !IsCommentaryKeyword(c.Keyword) {
		return nil, fmt.Errorf("keyword %q is not commentary", c.Keyword)
	}
	text := c.Comment
	const perCard = Width - 8 // text fills columns 8 through 79
	var out []byte
	for {
		img := blankImage()
		copy(img, c.Keyword)
		chunk := text
		if len(chunk) > perCard {
			chunk = chunk[:perCard]
		}
		copy(img[8:], chunk)
		out = append(out, img...)
		text = text[len(chunk):]
		if text == "" {
			return out, nil
		}
	}
}

// formatValue writes a non-string valued card. Plain keywords get the
// fixed-format layout with the value right justified to column 30;
// long keywords fall back to the free-format HIERARCH convention.
func formatValue(c Card) ([]byte, error) {
	img := blankImage()
	var pos int
	if NeedsHierarch(c.Keyword) {
		prefix := "HIERARCH " + c.Keyword + " = "
		if len(prefix)+len(c.Value) > Width {
			return nil, fmt.Errorf("keyword %q too long for one card", c.Keyword)
		}
		copy(img, prefix)
		pos = len(prefix)
	} else {
		copy(img, c.Keyword)
		copy(img[8:], "= ")
		pos = valueCol
	}
	if pos+len(c.Value) > Width {
		return nil, fmt.Errorf("value %q of keyword %q too long for one card", c.Value, c.Keyword)
	}
	// Right justify short values in the fixed format.
	if pos == valueCol && len(c.Value) <= fixedValueEnd-valueCol {
		copy(img[fixedValueEnd-len(c.Value):], c.Value)
		pos = fixedValueEnd
	} else {
		copy(img[pos:], c.Value)
		pos += len(c.Value)
	}
	appendComment(img, pos, c.Comment)
	return img, nil
}

// formatString writes a quoted string card, switching to the CONTINUE
// long-string convention when the value overflows the value field. A long
// keyword shrinks the first chunk to what fits after the HIERARCH prefix;
// the continuation images carry the full CONTINUE budget.
func formatString(c Card) ([]byte, error) {
	first := maxStringContent
	var prefix string
	if NeedsHierarch(c.Keyword) {
		prefix = "HIERARCH " + c.Keyword + " = "
		first = Width - len(prefix) - 2
		// The first chunk needs room for at least one content byte and
		// the continuation ampersand.
		if first < 2 || (first < 4 && escapedLen(c.Value) > first) {
			return nil, fmt.Errorf("keyword %q too long for one card", c.Keyword)
		}
	}
	chunks := splitString(c.Value, first)
	var out []byte
	for i, chunk := range chunks {
		img := blankImage()
		var pos int
		switch {
		case i == 0 && prefix != "":
			copy(img, prefix)
			pos = len(prefix)
		case i == 0:
			copy(img, c.Keyword)
			copy(img[8:], "= ")
			pos = valueCol
		default:
			copy(img, "CONTINUE")
			pos = valueCol
		}
		quoted := "'" + chunk + "'"
		// Pad short values to the conventional 8-character minimum.
		if len(chunks) == 1 && prefix == "" && escapedLen(c.Value) < 8 {
			quoted = fmt.Sprintf("'%-8s'", chunk)
		}
		copy(img[pos:], quoted)
		pos += len(quoted)
		if i == len(chunks)-1 {
			appendComment(img, pos, c.Comment)
		}
		out = append(out, img...)
	}
	return out, nil
}

// splitString escapes quotes and cuts the value into card-sized chunks,
// the first one limited to first escaped characters. Every chunk but the
// last ends with the continuation ampersand.
func splitString(value string, first int) []string {
	esc := strings.ReplaceAll(value, "'", "''")
	if len(esc) <= first {
		return []string{esc}
	}
	var chunks []string
	budget := first
	for len(esc) > budget {
		cut := budget - 1 // reserve the ampersand
		// Never split an escaped quote pair.
		if countTrailingQuotes(esc[:cut])%2 == 1 {
			cut--
		}
		chunks = append(chunks, esc[:cut]+"&")
		esc = esc[cut:]
		budget = maxStringContent
	}
	return append(chunks, esc)
}

func countTrailingQuotes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\''; i-- {
		n++
	}
	return n
}

// appendComment writes " / comment" after the value when space remains,
// truncating the comment to the card boundary.
func appendComment(img []byte, pos int, comment string) {
	if comment == "" || pos+3 >= Width {
		return
	}
	copy(img[pos:], " / ")
	copy(img[pos+3:], comment)
}
