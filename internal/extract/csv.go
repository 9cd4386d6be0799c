package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/roivaz/repometa/internal/repometa"
)

// WriteCSV truncates path and writes records to it. The file is not touched
// when records is empty.
func WriteCSV(path string, records []repometa.OutputRecord) (err error) {
	if len(records) == 0 {
		return repometa.ErrEmptyResult
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", cerr)
		}
	}()

	return EncodeCSV(f, records)
}

// EncodeCSV writes a header taken from the first record followed by one row
// per record, each in the header's column order.
func EncodeCSV(w io.Writer, records []repometa.OutputRecord) error {
	if len(records) == 0 {
		return repometa.ErrEmptyResult
	}

	header := records[0].Keys()
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for i, rec := range records {
		if rec.Len() != len(header) {
			return fmt.Errorf("write row %d: record has %d columns, header has %d", i, rec.Len(), len(header))
		}
		for col, key := range header {
			v, ok := rec.Get(key)
			if !ok {
				return fmt.Errorf("write row %d: record has no column %q", i, key)
			}
			row[col] = repometa.FormatValue(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
