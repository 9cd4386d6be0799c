package repometa

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	ErrParse       = errors.New("malformed repository metadata")
	ErrKeyMissing  = errors.New("missing key")
	ErrFieldType   = errors.New("unexpected field type")
	ErrEmptyResult = errors.New("no repositories passed the filter; nothing to write")
)

// ParseError reports input that is not valid JSON or not an array of objects.
// Index is the element being decoded, -1 outside of any element.
type ParseError struct {
	Index  int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("parse repository metadata at byte %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parse repository metadata element %d at byte %d: %v", e.Index, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// KeyMissingError reports a source record without one of the required keys.
type KeyMissingError struct {
	Index int
	Key   string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("record %d: missing key %q", e.Index, e.Key)
}

func (e *KeyMissingError) Unwrap() error { return ErrKeyMissing }

// FieldTypeError reports a value whose JSON type cannot be used where it is read.
type FieldTypeError struct {
	Index int
	Key   string
	Want  string
	Got   gjson.Type
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("record %d: key %q is %s, want %s", e.Index, e.Key, e.Got, e.Want)
}

func (e *FieldTypeError) Unwrap() error { return ErrFieldType }
