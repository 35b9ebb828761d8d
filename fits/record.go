package fits

import "strings"

// Record is one header entry: a keyword, a typed value, a unit and a
// comment. The unit is stored separately in memory; on disk it is merged
// into the comment field as a leading bracketed annotation.
type Record[T Value] struct {
	Keyword string
	Value   T
	Unit    string
	Comment string
}

// NewRecord builds a record with empty unit and comment.
func NewRecord[T Value](keyword string, value T) Record[T] {
	return Record[T]{Keyword: keyword, Value: value}
}

// RawComment returns the on-disk comment field: "[unit] comment" when the
// unit is set, the bare comment otherwise.
func (r Record[T]) RawComment() string {
	if r.Unit == "" {
		return r.Comment
	}
	if r.Comment == "" {
		return "[" + r.Unit + "]"
	}
	return "[" + r.Unit + "] " + r.Comment
}

// splitRawComment separates a leading bracketed unit annotation from the
// comment text. When no annotation is present, unit is empty.
func splitRawComment(raw string) (unit, comment string) {
	if !strings.HasPrefix(raw, "[") {
		return "", raw
	}
	end := strings.IndexByte(raw, ']')
	if end < 0 {
		return "", raw
	}
	return raw[1:end], strings.TrimPrefix(raw[end+1:], " ")
}
