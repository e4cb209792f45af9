package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

func series(prices ...float64) model.Series {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make(model.Series, len(prices))
	for i, p := range prices {
		out[i] = model.StockPoint{Date: start.AddDate(0, 0, i), Price: p}
	}
	return out
}

func TestStore_Lifecycle(t *testing.T) {
	s := New(nil)
	assert.Equal(t, model.StateEmpty, s.State())
	assert.False(t, s.Current().Loaded())

	require.NoError(t, s.Replace("a.csv", series(1, 2)))
	snap := s.Current()
	assert.Equal(t, model.StateLoaded, snap.State)
	assert.Equal(t, "a.csv", snap.Source)
	assert.Equal(t, uint64(1), snap.Version)

	require.NoError(t, s.Replace("b.csv", series(3)))
	snap = s.Current()
	assert.Equal(t, []float64{3}, snap.Series.Prices())
	assert.Equal(t, uint64(2), snap.Version)

	assert.True(t, s.Clear())
	assert.Equal(t, model.StateEmpty, s.State())
	assert.Empty(t, s.Current().Series)
	assert.False(t, s.Clear(), "clearing an empty store is not a transition")
}

func TestStore_RejectsEmptySeries(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Replace("a.csv", series(1)))

	err := s.Replace("b.csv", model.Series{})
	assert.ErrorIs(t, err, ErrEmptySeries)
	assert.Equal(t, "a.csv", s.Current().Source)
}

func TestStore_StaleCompletionIsDiscarded(t *testing.T) {
	s := New(nil)

	older := s.Begin()
	newer := s.Begin()

	require.NoError(t, s.Commit(newer, "new.csv", series(10)))
	err := s.Commit(older, "old.csv", series(1))
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, "new.csv", s.Current().Source)
}

func TestStore_OlderCompletionBeforeNewerIsDiscarded(t *testing.T) {
	s := New(nil)

	older := s.Begin()
	newer := s.Begin()

	assert.ErrorIs(t, s.Commit(older, "old.csv", series(1)), ErrStale)
	assert.False(t, s.Current().Loaded())
	require.NoError(t, s.Commit(newer, "new.csv", series(10)))
	assert.Equal(t, "new.csv", s.Current().Source)
}

func TestStore_ClearInvalidatesInFlightLoads(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Replace("a.csv", series(1)))

	pending := s.Begin()
	s.Clear()
	assert.ErrorIs(t, s.Commit(pending, "late.csv", series(2)), ErrStale)
	assert.Equal(t, model.StateEmpty, s.State())
}

func TestStore_SnapshotsDoNotAlias(t *testing.T) {
	s := New(nil)
	in := series(1, 2, 3)
	require.NoError(t, s.Replace("a.csv", in))

	in[0].Price = 99
	snap := s.Current()
	assert.Equal(t, 1.0, snap.Series[0].Price)

	snap.Series[1].Price = 42
	assert.Equal(t, 2.0, s.Current().Series[1].Price)
}

func TestStore_NotifiesListeners(t *testing.T) {
	s := New(nil)
	var got []model.Snapshot
	s.Subscribe(func(snap model.Snapshot) { got = append(got, snap) })

	require.NoError(t, s.Replace("a.csv", series(1)))
	s.Clear()
	s.Clear()

	require.Len(t, got, 2)
	assert.Equal(t, model.StateLoaded, got[0].State)
	assert.Equal(t, model.StateEmpty, got[1].State)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Replace("x.csv", series(float64(i)+1))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Current()
		}()
	}
	wg.Wait()
	assert.Equal(t, model.StateLoaded, s.State())
}
