package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"StockLens/internal/model"
)

// ParseWorkbook reads the first sheet of an .xlsx workbook with the same
// header and blank-row rules as Parse.
func ParseWorkbook(r io.Reader) ([]model.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &EmptyInputError{}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}
