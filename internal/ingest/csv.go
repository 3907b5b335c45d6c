package ingest

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV reads a CSV report and returns all rows as string slices. Rows
// may have varying field counts; short rows are returned as-is.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	return rows, nil
}
