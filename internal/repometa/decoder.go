package repometa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decoder streams the objects of a top-level JSON array one at a time so the
// array never has to fit in memory.
type Decoder struct {
	dec     *json.Decoder
	started bool
	index   int
	err     error
}

// NewDecoder reads a JSON array of objects from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next returns the next element of the array. It returns io.EOF after the
// closing bracket and a *ParseError for anything that is not an array of
// objects. Errors are sticky.
func (d *Decoder) Next() (SourceRecord, error) {
	if d.err != nil {
		return SourceRecord{}, d.err
	}
	if !d.started {
		if err := d.openArray(); err != nil {
			return SourceRecord{}, d.fail(-1, err)
		}
		d.started = true
	}

	if !d.dec.More() {
		if err := d.closeArray(); err != nil {
			return SourceRecord{}, d.fail(-1, err)
		}
		d.err = io.EOF
		return SourceRecord{}, io.EOF
	}

	var raw json.RawMessage
	if err := d.dec.Decode(&raw); err != nil {
		return SourceRecord{}, d.fail(d.index, unexpectedEOF(err))
	}
	if first := firstByte(raw); first != '{' {
		return SourceRecord{}, d.fail(d.index, fmt.Errorf("element is %s, want object", describe(first)))
	}

	rec := NewSourceRecord(d.index, string(raw))
	d.index++
	return rec, nil
}

// Count returns the number of elements returned so far.
func (d *Decoder) Count() int {
	return d.index
}

func (d *Decoder) openArray() error {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty input, want array")
		}
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("top-level value is %v, want array", describeToken(tok))
	}
	return nil
}

func (d *Decoder) closeArray() error {
	tok, err := d.dec.Token()
	if err != nil {
		return unexpectedEOF(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != ']' {
		return fmt.Errorf("unexpected token %v, want end of array", tok)
	}
	// Only whitespace may follow the array.
	if tok, err := d.dec.Token(); err == nil {
		return fmt.Errorf("unexpected %v after end of array", describeToken(tok))
	} else if !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (d *Decoder) fail(index int, err error) error {
	d.err = &ParseError{Index: index, Offset: d.dec.InputOffset(), Err: err}
	return d.err
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func describe(first byte) string {
	switch first {
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 'n':
		return "null"
	case 't', 'f':
		return "a boolean"
	default:
		return "a number"
	}
}

func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '{' {
			return "an object"
		}
		return fmt.Sprintf("%q", string(v))
	case string:
		return "a string"
	case nil:
		return "null"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
