package parser

import "fmt"

// EmptyInputError reports input that has no data rows once blank lines are
// skipped.
type EmptyInputError struct {
	Name string
}

func (e *EmptyInputError) Error() string {
	if e.Name == "" {
		return "empty file: no data rows"
	}
	return fmt.Sprintf("empty file %q: no data rows", e.Name)
}

// UnsupportedFormatError reports a file whose extension is neither CSV nor a
// workbook.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("invalid file type %q: upload a .csv file containing Date and Close columns", e.Name)
}
