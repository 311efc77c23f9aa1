package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// CSVParser handles CSV files. The header row becomes a bold span and every
// data row a body span of "header: value" pairs.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var spans spanList
	if len(records) > 0 {
		headers := records[0]
		spans.add(strings.Join(headers, ", "), BodyFontSize, true, 0)
		for _, row := range records[1:] {
			spans.add(formatRow(headers, row), BodyFontSize, false, 0)
		}
	}

	return &doctree.Document{
		Filename:  filename,
		PageCount: 1,
		Spans:     spans.spans,
	}, nil
}

// formatRow labels each cell with its header. Cells beyond the header row
// and cells under a blank header are written bare; empty cells are dropped.
func formatRow(headers, row []string) string {
	cells := make([]string, 0, len(row))
	for j, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
			cell = strings.TrimSpace(headers[j]) + ": " + cell
		}
		cells = append(cells, cell)
	}
	return strings.Join(cells, ", ")
}
