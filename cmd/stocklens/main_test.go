package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Date,Close\n2023-01-10,100\n2023-06-01,150\n2023-01-05,90\n"), 0o644))
	configPath = filepath.Join(dir, "absent.yaml")

	var out bytes.Buffer
	analyzeCmd.SetOut(&out)
	defer analyzeCmd.SetOut(nil)

	require.NoError(t, runAnalyze(analyzeCmd, []string{csvPath}))
	assert.Contains(t, out.String(), "Loaded 3 rows")
	assert.Contains(t, out.String(), "Jan 05, 2023 → Jun 01, 2023")
	assert.Contains(t, out.String(), "Average Price: ₹113.33")
	assert.NotContains(t, out.String(), "<b>")
}

func TestAnalyzeCommand_BadFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Date,Close\n"), 0o644))
	configPath = filepath.Join(dir, "absent.yaml")

	err := runAnalyze(analyzeCmd, []string{csvPath})
	assert.ErrorContains(t, err, "empty")
}
