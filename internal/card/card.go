package card

// Width is the fixed size of one card image in bytes.
const Width = 80

// valueCol is the 0-based column where the value field of a fixed-format
// card begins (column 11 in the 1-based FITS convention).
const valueCol = 10

// fixedValueEnd is the 0-based column after the fixed-format value field
// (numeric values are right justified to column 30).
const fixedValueEnd = 30

// maxStringContent is the number of escaped characters that fit between
// the quotes of a single card: Width - valueCol - 2 quotes.
const maxStringContent = 68

// Kind discriminates valued cards from structural and commentary ones.
type Kind int

const (
	// KindValue is a regular "KEYWORD = value" card.
	KindValue Kind = iota
	// KindCommentary is a COMMENT, HISTORY or blank-keyword card. These
	// carry free text, no value, and may repeat within a header.
	KindCommentary
)

// Card is one logical header record. For KindValue cards, Value holds the
// source text of the value field (unquoted for strings) and IsString tells
// quoted from unquoted values apart. Comment is the text after the slash.
type Card struct {
	Kind     Kind
	Keyword  string
	Value    string
	IsString bool
	Comment  string
}

// IsCommentaryKeyword reports whether keyword names a card kind that may
// repeat and carries no value.
func IsCommentaryKeyword(keyword string) bool {
	return keyword == "COMMENT" || keyword == "HISTORY" || keyword == ""
}

// NeedsHierarch reports whether keyword requires the long-keyword
// convention: longer than 8 characters, or containing characters outside
// the plain set [A-Z0-9_-].
func NeedsHierarch(keyword string) bool {
	if len(keyword) > 8 {
		return true
	}
	for i := 0; i < len(keyword); i++ {
		c := keyword[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' && c != '-' {
			return true
		}
	}
	return false
}

// NeedsContinue reports whether a string value overflows the fixed value
// field once quote escaping is accounted for.
func NeedsContinue(value string) bool {
	return escapedLen(value) > maxStringContent
}

// escapedLen is the length of value with single quotes doubled.
func escapedLen(value string) int {
	n := len(value)
	for i := 0; i < len(value); i++ {
		if value[i] == '\'' {
			n++
		}
	}
	return n
}
