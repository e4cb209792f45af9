package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder_RecordsLoadsAndInsights(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	defer rec.Close()

	require.NoError(t, rec.RecordLoad(&LoadEvent{
		UploadID:   "u-1",
		Source:     "upload",
		Filename:   "prices.csv",
		Rows:       3,
		Surviving:  3,
		Points:     3,
		Applied:    true,
		Min:        90,
		Max:        150,
		Mean:       113.3,
		ReturnPct:  66.7,
		ReturnOK:   true,
		RangeStart: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		RangeEnd:   time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, rec.RecordLoad(&LoadEvent{UploadID: "u-2", Error: "empty file"}))
	require.NoError(t, rec.RecordInsight(&InsightEvent{Version: 1, Provider: "openrouter", Points: 3, Latency: time.Second}))

	n, err := rec.CountLoads()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordLoad(&LoadEvent{}))
	assert.NoError(t, rec.RecordInsight(&InsightEvent{}))
	assert.NoError(t, rec.Close())
}
