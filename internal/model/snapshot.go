package model

// StoreState is the lifecycle state of the series store.
type StoreState string

const (
	StateEmpty  StoreState = "EMPTY"
	StateLoaded StoreState = "LOADED"
)

// Snapshot is a read-only copy of the store contents at a given version.
type Snapshot struct {
	State   StoreState `json:"state"`
	Version uint64     `json:"version"`
	Series  Series     `json:"series"`
	Source  string     `json:"source,omitempty"`
}

// Loaded reports whether the snapshot holds a series.
func (s Snapshot) Loaded() bool { return s.State == StateLoaded }
