package recorder

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordLoad(_ *LoadEvent) error       { return nil }
func (n *NoopRecorder) RecordInsight(_ *InsightEvent) error { return nil }
func (n *NoopRecorder) Close() error                        { return nil }
