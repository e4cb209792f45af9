package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"StockLens/internal/model"
)

const byteOrderMark = "\ufeff"

// ParseFile picks a reader by file extension. An empty name is treated as CSV.
func ParseFile(name string, r io.Reader) ([]model.RawRecord, error) {
	var (
		records []model.RawRecord
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".csv", ".txt":
		records, err = Parse(r)
	case ".xlsx":
		records, err = ParseWorkbook(r)
	default:
		return nil, &UnsupportedFormatError{Name: name}
	}
	var empty *EmptyInputError
	if errors.As(err, &empty) {
		empty.Name = name
	}
	return records, err
}

// Parse reads comma-separated text whose first row is the header and returns
// one record per non-blank data row, in input order.
func Parse(r io.Reader) ([]model.RawRecord, error) {
	br := bufio.NewReader(r)

	// Spreadsheet exports are sometimes UTF-16 with a BOM.
	if b, _ := br.Peek(2); len(b) == 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		br = bufio.NewReader(transform.NewReader(br, dec))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows)
}

// fromRows turns a header row plus data rows into records.
func fromRows(rows [][]string) ([]model.RawRecord, error) {
	if len(rows) == 0 {
		return nil, &EmptyInputError{}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, byteOrderMark)
		}
		header[i] = strings.TrimSpace(h)
	}

	records := make([]model.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(model.RawRecord, len(header))
		for i, name := range header {
			if name == "" || i >= len(row) {
				continue
			}
			if _, dup := rec[name]; dup {
				continue
			}
			if v, ok := typed(row[i]); ok {
				rec[name] = v
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, &EmptyInputError{}
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// typed applies advisory typing: finite numerics become float64, empty cells
// are dropped, everything else stays a string.
func typed(cell string) (any, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f, true
	}
	return s, true
}
