package frame

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/ezoic/surrogo/pkg/errors"
)

// ReadCSV reads a frame with a header row. Cells are converted with Parse.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(errors.ErrEmptyData, "read csv header")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows [][]Value
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv line %d", line)
		}
		row := make([]Value, len(record))
		for j, cell := range record {
			row[j] = Parse(strings.TrimSpace(cell))
		}
		rows = append(rows, row)
	}
	return New(header, rows)
}

// WriteCSV writes f with a header row. Missing cells are written empty.
func WriteCSV(w io.Writer, f *Frame) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.columns); err != nil {
		return err
	}
	record := make([]string, len(f.columns))
	for i := 0; i < f.Len(); i++ {
		for j, c := range f.columns {
			record[j] = ""
			if v := f.data[c][i]; !v.IsMissing() {
				record[j] = v.String()
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
