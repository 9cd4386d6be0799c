package repometa

import "github.com/tidwall/gjson"

// Project copies the mapped fields of rec into a new OutputRecord, renaming
// them and keeping their JSON values untouched.
func Project(rec SourceRecord) (OutputRecord, error) {
	out := OutputRecord{
		keys:   make([]string, 0, len(Fields)),
		values: make([]gjson.Result, 0, len(Fields)),
	}
	for _, f := range Fields {
		v, err := rec.Lookup(f.Source)
		if err != nil {
			return OutputRecord{}, err
		}
		out.keys = append(out.keys, f.Output)
		out.values = append(out.values, detach(v))
	}
	return out, nil
}
