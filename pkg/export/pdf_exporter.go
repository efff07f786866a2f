package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth   = 277.0 // A4 landscape minus margins
	pdfMaxCellRune = 48
)

// PDFExporter renders a Dataset as a landscape table with a repeated header
// row and page numbers.
type PDFExporter struct {
	now func() time.Time
}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render builds the document.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	widths := columnWidths(data)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	generated := e.now().UTC().Format(time.RFC3339)

	pdf.SetHeaderFunc(func() {
		if data.Title != "" {
			pdf.SetFont("Arial", "B", 13)
			pdf.CellFormat(0, 8, data.Title, "", 1, "L", false, 0, "")
		}
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, "Generated "+generated, "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], 7, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Confidential - page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		record := data.record(row)
		for i, value := range record {
			pdf.CellFormat(widths[i], 6, truncate(value, pdfMaxCellRune), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Rows) == 0 {
		pdf.CellFormat(0, 7, "No entries.", "", 1, "L", false, 0, "")
	}

	if len(data.Notes) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 8)
		for _, note := range data.Notes {
			pdf.MultiCell(0, 5, note, "", "L", false)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths sizes columns by their longest (truncated) cell, scaled to the page.
func columnWidths(data Dataset) []float64 {
	weights := make([]float64, len(data.Headers))
	for i, header := range data.Headers {
		weights[i] = float64(runeLen(header, pdfMaxCellRune))
	}
	for _, row := range data.Rows {
		for i := range data.Headers {
			if i < len(row) {
				if n := float64(runeLen(row[i], pdfMaxCellRune)); n > weights[i] {
					weights[i] = n
				}
			}
		}
	}
	var total float64
	for i := range weights {
		if weights[i] < 4 {
			weights[i] = 4
		}
		total += weights[i]
	}
	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = pdfPageWidth * w / total
	}
	return widths
}

func runeLen(s string, limit int) int {
	n := len([]rune(s))
	if n > limit {
		return limit
	}
	return n
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
