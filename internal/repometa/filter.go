package repometa

import "github.com/tidwall/gjson"

// DefaultStarThreshold is the minimum star count a repository needs to be kept.
const DefaultStarThreshold = 100

// Predicate decides whether a source record is kept. An error aborts the scan.
type Predicate func(SourceRecord) (bool, error)

// MinStars keeps records whose stars value is at least threshold. A record
// without stars, or with a non-numeric one, is an error rather than a skip.
func MinStars(threshold int64) Predicate {
	return func(rec SourceRecord) (bool, error) {
		stars, err := rec.Lookup("stars")
		if err != nil {
			return false, err
		}
		if stars.Type != gjson.Number {
			return false, &FieldTypeError{Index: rec.Index, Key: "stars", Want: "number", Got: stars.Type}
		}
		return stars.Num >= float64(threshold), nil
	}
}
