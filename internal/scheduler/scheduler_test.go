package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/collector"
	"StockLens/internal/insight"
	"StockLens/internal/model"
	"StockLens/internal/store"
)

const pricesCSV = "Date,Close\n2023-01-10,100\n2023-06-01,150\n2023-01-05,90\n"

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func (r *recordingNotifier) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

type staticProvider struct {
	text string
	err  error
}

func (p staticProvider) Name() string    { return "static" }
func (p staticProvider) KeyName() string { return "STATIC_API_KEY" }
func (p staticProvider) Generate(context.Context, []model.ExportPoint) (string, error) {
	return p.text, p.err
}

func newScheduler(t *testing.T, src collector.Source, p insight.Provider) (*Scheduler, *store.Store, *recordingNotifier) {
	t.Helper()
	st := store.New(nil)
	col := collector.NewCollector(st, nil, nil, nil)
	req, err := insight.NewRequester(p, insight.Options{}, nil, nil, nil)
	require.NoError(t, err)
	st.Subscribe(func(snap model.Snapshot) { req.Refresh(context.Background(), snap) })
	n := &recordingNotifier{}
	return NewScheduler(context.Background(), col, st, req, n, src, nil), st, n
}

func TestHandleCommand(t *testing.T) {
	s, st, _ := newScheduler(t, &collector.MockSource{Text: pricesCSV}, staticProvider{text: "Strong rally."})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/stats"), "No series loaded")

	reply := s.HandleCommand(ctx, "/reload")
	assert.Contains(t, reply, "Loaded 3 rows")
	assert.True(t, st.Current().Loaded())

	reply = s.HandleCommand(ctx, "/stats@StockLensBot")
	assert.Contains(t, reply, "+66.67%")

	reply = s.HandleCommand(ctx, "/insight")
	assert.Contains(t, reply, "Strong rally.")

	assert.Contains(t, s.HandleCommand(ctx, "/clear"), "cleared")
	assert.Contains(t, s.HandleCommand(ctx, "/clear"), "Nothing to clear")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/stats")
	assert.Contains(t, s.HandleCommand(ctx, "   "), "/help")
}

func TestHandleCommand_ReloadFailure(t *testing.T) {
	s, st, _ := newScheduler(t, &collector.MockSource{Text: "Date,Price\n2024-03-01,not-a-number\n"}, staticProvider{})
	reply := s.HandleCommand(context.Background(), "/reload")
	assert.Contains(t, reply, "Reload failed")
	assert.Contains(t, reply, "missing required columns")
	assert.False(t, st.Current().Loaded())
}

func TestHandleCommand_InsightFailureShowsFallback(t *testing.T) {
	s, _, _ := newScheduler(t, &collector.MockSource{Text: pricesCSV}, staticProvider{err: errors.New("down")})
	ctx := context.Background()
	s.HandleCommand(ctx, "/reload")

	reply := s.HandleCommand(ctx, "/insight")
	assert.Contains(t, reply, "AI insights unavailable. Please configure STATIC_API_KEY")
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newScheduler(t, nil, staticProvider{})
	assert.Error(t, s.RegisterAll("0 0 22 * * 1-5", ""))
	assert.Error(t, s.RegisterAll("", "not a cron"))
	require.NoError(t, s.RegisterAll("", "0 0 9 * * *"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestReloadTaskSendsResult(t *testing.T) {
	s, _, n := newScheduler(t, &collector.MockSource{Text: pricesCSV}, staticProvider{text: "ok"})
	require.NoError(t, s.RegisterAll("* * * * * *", ""))

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return len(n.Sent()) > 0 }, 3*time.Second, 20*time.Millisecond)
	assert.Contains(t, n.Sent()[0], "Loaded 3 rows")
}

func TestReportTask(t *testing.T) {
	s, _, n := newScheduler(t, &collector.MockSource{Text: pricesCSV}, staticProvider{text: "Trending up."})

	s.reportTask()
	assert.Empty(t, n.Sent())

	s.RunReloadNow()
	s.reportTask()
	sent := n.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Average Price")
	assert.Contains(t, sent[0], "Trending up.")
}
