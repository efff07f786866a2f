package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a rendered table. Rows shorter than Headers are padded with
// blanks; longer rows are truncated.
type Dataset struct {
	Title   string
	Notes   []string
	Headers []string
	Rows    [][]string
}

func (d Dataset) record(row []string) []string {
	out := make([]string, len(d.Headers))
	copy(out, row)
	return out
}

// CSVExporter renders a Dataset as CSV. Title and notes are not emitted so
// the output stays machine readable.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
