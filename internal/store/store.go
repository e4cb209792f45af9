package store

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"StockLens/internal/model"
)

var (
	// ErrStale is returned by Commit when a newer load or a clear was started
	// after the ticket was issued.
	ErrStale = errors.New("stale load discarded: a newer request superseded it")
	// ErrEmptySeries is returned when asked to store a series with no points.
	ErrEmptySeries = errors.New("refusing to store an empty series")
)

// Ticket identifies one load attempt. Only the most recently issued ticket
// may commit.
type Ticket uint64

// Listener is notified after every applied replace or clear.
type Listener func(model.Snapshot)

// Store holds zero or one series. Consumers only ever see copies.
type Store struct {
	mu        sync.Mutex
	state     model.StoreState
	series    model.Series
	source    string
	version   uint64
	issued    uint64
	listeners []Listener
	logger    *zap.Logger
}

// New creates an empty store.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{state: model.StateEmpty, logger: logger.Named("store")}
}

// Begin issues the ticket for a load that is about to start reading input.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return Ticket(s.issued)
}

// Commit swaps in series if t is still the latest ticket. The store keeps its
// own copy.
func (s *Store) Commit(t Ticket, source string, series model.Series) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}

	s.mu.Lock()
	if uint64(t) != s.issued {
		latest := s.issued
		s.mu.Unlock()
		s.logger.Info("discarding stale load",
			zap.Uint64("ticket", uint64(t)),
			zap.Uint64("latest", latest),
			zap.String("source", source))
		return ErrStale
	}
	s.series = series.Clone()
	s.source = source
	s.state = model.StateLoaded
	s.version++
	snap := s.snapshotLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("series replaced",
		zap.Uint64("version", snap.Version),
		zap.Int("points", len(snap.Series)),
		zap.String("source", source))
	notify(listeners, snap)
	return nil
}

// Replace is Begin followed immediately by Commit.
func (s *Store) Replace(source string, series model.Series) error {
	return s.Commit(s.Begin(), source, series)
}

// Clear drops the stored series. Loads started before the call can no longer
// commit. Returns false if the store was already empty.
func (s *Store) Clear() bool {
	s.mu.Lock()
	s.issued++
	if s.state != model.StateLoaded {
		s.mu.Unlock()
		return false
	}
	s.series = nil
	s.source = ""
	s.state = model.StateEmpty
	s.version++
	snap := s.snapshotLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("series cleared", zap.Uint64("version", snap.Version))
	notify(listeners, snap)
	return true
}

// Current returns a copy of the stored series and its metadata.
func (s *Store) Current() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the lifecycle state.
func (s *Store) State() model.StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for change notifications. Listeners run on the
// caller's goroutine after the lock is released.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		State:   s.state,
		Version: s.version,
		Series:  s.series.Clone(),
		Source:  s.source,
	}
}

func notify(listeners []Listener, snap model.Snapshot) {
	for _, fn := range listeners {
		fn(model.Snapshot{
			State:   snap.State,
			Version: snap.Version,
			Series:  snap.Series.Clone(),
			Source:  snap.Source,
		})
	}
}
