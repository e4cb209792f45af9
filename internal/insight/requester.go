package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/recorder"
)

const fallbackFormat = "AI insights unavailable. Please configure %s in your project settings and try again."

// State is the insight shown next to the current series.
type State struct {
	Version   uint64    `json:"version"`
	Text      string    `json:"text"`
	Loading   bool      `json:"loading"`
	Failed    bool      `json:"failed"`
	Error     string    `json:"error,omitempty"`
	Provider  string    `json:"provider"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Options tune a Requester. Zero values pick defaults.
type Options struct {
	Limit         int
	CacheSize     int
	RatePerMinute float64
}

// Requester fetches insights for the series the store currently holds. An
// answer is applied only if no newer request was started meanwhile, so a
// slow reply for an old series never replaces a newer one. Failures become
// fallback text; nothing is retried automatically.
type Requester struct {
	provider Provider
	limit    int
	cache    *lru.Cache[string, string]
	limiter  *rate.Limiter
	recorder recorder.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu        sync.Mutex
	gen       uint64
	snapshot  model.Snapshot
	state     State
	listeners []func(State)
}

// NewRequester creates a Requester. rec and m may be nil.
func NewRequester(p Provider, opts Options, rec recorder.Recorder, m *metrics.Metrics, logger *zap.Logger) (*Requester, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	cache, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create insight cache: %w", err)
	}
	limit := rate.Inf
	if opts.RatePerMinute > 0 {
		limit = rate.Limit(opts.RatePerMinute / 60)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{
		provider: p,
		limit:    opts.Limit,
		cache:    cache,
		limiter:  rate.NewLimiter(limit, 1),
		recorder: rec,
		metrics:  m,
		logger:   logger.Named("insight"),
		state:    State{Provider: p.Name()},
	}, nil
}

// Fallback is the text shown when the provider fails.
func (r *Requester) Fallback() string {
	return fmt.Sprintf(fallbackFormat, r.provider.KeyName())
}

// Current returns the latest applied state.
func (r *Requester) Current() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// OnChange registers fn to receive every applied state.
func (r *Requester) OnChange(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Listen returns a store listener that refreshes insights in the background
// whenever the series changes.
func (r *Requester) Listen(ctx context.Context) func(model.Snapshot) {
	return func(snap model.Snapshot) {
		go r.Refresh(ctx, snap)
	}
}

// Refresh requests insights for snap, using the cache when possible. A
// snapshot older than one already seen is ignored.
func (r *Requester) Refresh(ctx context.Context, snap model.Snapshot) State {
	return r.request(ctx, snap, false)
}

// Regenerate asks again for the most recent snapshot, bypassing the cache.
func (r *Requester) Regenerate(ctx context.Context) State {
	r.mu.Lock()
	snap := r.snapshot
	r.mu.Unlock()
	return r.request(ctx, snap, true)
}

func (r *Requester) request(ctx context.Context, snap model.Snapshot, bypassCache bool) State {
	r.mu.Lock()
	if snap.Version < r.snapshot.Version {
		st := r.state
		r.mu.Unlock()
		return st
	}
	r.gen++
	gen := r.gen
	r.snapshot = snap

	if !snap.Loaded() {
		r.state = State{Version: snap.Version, Provider: r.provider.Name(), UpdatedAt: time.Now()}
		st, listeners := r.state, r.copyListeners()
		r.mu.Unlock()
		r.notify(listeners, st)
		return st
	}
	r.state = State{Version: snap.Version, Loading: true, Provider: r.provider.Name(), Text: r.state.Text}
	r.mu.Unlock()

	points := Export(snap.Series, r.limit)
	key := r.cacheKey(points)

	if !bypassCache {
		if text, ok := r.cache.Get(key); ok {
			r.count(metrics.ResultCached)
			r.record(snap.Version, len(points), true, 0, nil)
			return r.apply(gen, State{Version: snap.Version, Text: text, Provider: r.provider.Name()})
		}
	}

	start := time.Now()
	text, err := r.generate(ctx, points)
	latency := time.Since(start)
	r.record(snap.Version, len(points), false, latency, err)

	if err != nil {
		r.logger.Warn("insight request failed",
			zap.Uint64("version", snap.Version),
			zap.String("provider", r.provider.Name()),
			zap.Error(err))
		r.count(metrics.ResultFallback)
		return r.apply(gen, State{
			Version:  snap.Version,
			Text:     r.Fallback(),
			Failed:   true,
			Error:    err.Error(),
			Provider: r.provider.Name(),
		})
	}

	r.cache.Add(key, text)
	r.count(metrics.ResultOK)
	r.logger.Info("insight generated",
		zap.Uint64("version", snap.Version),
		zap.Int("points", len(points)),
		zap.Duration("latency", latency))
	return r.apply(gen, State{Version: snap.Version, Text: text, Provider: r.provider.Name()})
}

func (r *Requester) generate(ctx context.Context, points []model.ExportPoint) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("insight rate limit: %w", err)
	}
	return r.provider.Generate(ctx, points)
}

// apply stores st if gen is still the newest request, and returns whatever
// state is current afterwards.
func (r *Requester) apply(gen uint64, st State) State {
	st.UpdatedAt = time.Now()

	r.mu.Lock()
	if gen != r.gen {
		cur := r.state
		r.mu.Unlock()
		r.logger.Debug("discarding stale insight", zap.Uint64("version", st.Version))
		return cur
	}
	r.state = st
	listeners := r.copyListeners()
	r.mu.Unlock()

	r.notify(listeners, st)
	return st
}

func (r *Requester) copyListeners() []func(State) {
	return append(([]func(State))(nil), r.listeners...)
}

func (r *Requester) notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st)
	}
}

func (r *Requester) cacheKey(points []model.ExportPoint) string {
	data, _ := json.Marshal(points)
	sum := sha256.Sum256(append([]byte(r.provider.Name()+"\n"), data...))
	return hex.EncodeToString(sum[:])
}

func (r *Requester) count(result string) {
	if r.metrics != nil {
		r.metrics.Insights.WithLabelValues(r.provider.Name(), result).Inc()
	}
}

func (r *Requester) record(version uint64, points int, cached bool, latency time.Duration, err error) {
	evt := &recorder.InsightEvent{
		Version:  version,
		Provider: r.provider.Name(),
		Points:   points,
		Cached:   cached,
		Latency:  latency,
	}
	if err != nil {
		evt.Error = err.Error()
	}
	if rerr := r.recorder.RecordInsight(evt); rerr != nil {
		r.logger.Warn("record insight failed", zap.Error(rerr))
	}
}
