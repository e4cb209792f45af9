package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Date", "Close"},
		{"2023-01-10", "100"},
		{nil, nil},
		{"2023-01-11", "101.25"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ParseFile("prices.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2023-01-10", records[0]["Date"])
	assert.Equal(t, 101.25, records[1]["Close"])
}

func TestParseWorkbook_HeaderOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Date"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Close"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ParseWorkbook(buf)
	var empty *EmptyInputError
	require.ErrorAs(t, err, &empty)
}
