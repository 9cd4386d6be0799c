package repometa

import (
	"strings"

	"github.com/tidwall/gjson"
)

// SourceRecord is one element of the input array, kept as raw JSON.
type SourceRecord struct {
	Index int
	doc   gjson.Result
}

// NewSourceRecord wraps the raw JSON object found at position index.
func NewSourceRecord(index int, raw string) SourceRecord {
	return SourceRecord{Index: index, doc: gjson.Parse(raw)}
}

// Raw returns the record's JSON text.
func (r SourceRecord) Raw() string {
	return r.doc.Raw
}

// Lookup returns the value stored under key or a *KeyMissingError. Keys are
// matched literally, gjson path syntax is escaped.
func (r SourceRecord) Lookup(key string) (gjson.Result, error) {
	v := r.doc.Get(gjson.Escape(key))
	if !v.Exists() {
		return gjson.Result{}, &KeyMissingError{Index: r.Index, Key: key}
	}
	return v, nil
}

// OutputRecord is the projected, renamed view of an accepted source record.
// Keys and values are parallel slices in column order.
type OutputRecord struct {
	keys   []string
	values []gjson.Result
}

// Keys returns the column names in the record's order.
func (r OutputRecord) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of columns.
func (r OutputRecord) Len() int {
	return len(r.keys)
}

// Get returns the value stored under the output key.
func (r OutputRecord) Get(key string) (gjson.Result, bool) {
	for i, k := range r.keys {
		if k == key {
			return r.values[i], true
		}
	}
	return gjson.Result{}, false
}

// Value returns the value stored in column i.
func (r OutputRecord) Value(i int) gjson.Result {
	return r.values[i]
}

// detach copies a value out of its source buffer so the enclosing source
// record can be garbage collected while the output record is kept.
func detach(v gjson.Result) gjson.Result {
	return gjson.Parse(strings.Clone(v.Raw))
}

// FormatValue renders a value as CSV text: strings unquoted, numbers as their
// JSON literal, booleans as true/false, null as an empty field and nested
// objects or arrays as compact JSON.
func FormatValue(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		return v.Raw
	case gjson.JSON:
		return v.Get("@ugly").Raw
	default:
		return v.Raw
	}
}
