package recorder

import "time"

// LoadEvent describes one attempt to load a series, successful or not.
type LoadEvent struct {
	UploadID   string
	Source     string
	Filename   string
	Rows       int // records produced by the row parser
	Surviving  int
	Rejected   int
	Points     int // points left after the window filter
	Applied    bool
	Error      string
	Min        float64
	Max        float64
	Mean       float64
	ReturnPct  float64
	ReturnOK   bool
	RangeStart time.Time
	RangeEnd   time.Time
}

// InsightEvent describes one call to the insight provider.
type InsightEvent struct {
	Version  uint64
	Provider string
	Points   int
	Cached   bool
	Error    string
	Latency  time.Duration
}

// Recorder keeps a history of loads and insight calls. It never stores the
// series itself.
type Recorder interface {
	RecordLoad(evt *LoadEvent) error
	RecordInsight(evt *InsightEvent) error
	Close() error
}
