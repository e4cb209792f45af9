package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"StockLens/internal/calculator"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/normalizer"
	"StockLens/internal/parser"
	"StockLens/internal/recorder"
	"StockLens/internal/store"
)

// LoadResult summarizes one pass through the pipeline.
type LoadResult struct {
	UploadID  string           `json:"upload_id"`
	Source    string           `json:"source"`
	Filename  string           `json:"filename"`
	Rows      int              `json:"rows"`
	Surviving int              `json:"surviving"`
	Rejected  int              `json:"rejected"`
	Points    int              `json:"points"`
	Stats     model.Statistics `json:"stats"`
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	Applied   bool             `json:"applied"`
}

// Collector runs sources through parse, normalize, window and store.
type Collector struct {
	store    *store.Store
	recorder recorder.Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewCollector creates a new Collector. rec and m may be nil.
func NewCollector(st *store.Store, rec recorder.Recorder, m *metrics.Metrics, logger *zap.Logger) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m != nil {
		st.Subscribe(func(snap model.Snapshot) {
			m.SeriesPoints.Set(float64(snap.Series.Len()))
		})
	}
	return &Collector{store: st, recorder: rec, metrics: m, logger: logger.Named("collector")}
}

// Load reads src and, if no newer load or clear started meanwhile, replaces
// the stored series. On error the store is left untouched. A result with
// Applied false and a nil error means a newer request won.
func (c *Collector) Load(ctx context.Context, src Source) (*LoadResult, error) {
	res := &LoadResult{UploadID: uuid.NewString(), Source: src.Name()}
	log := c.logger.With(zap.String("upload_id", res.UploadID), zap.String("source", res.Source))

	ticket := c.store.Begin()
	series, err := c.read(ctx, src, res)
	if err != nil {
		log.Warn("load failed", zap.String("filename", res.Filename), zap.Error(err))
		c.finish(res, err)
		return nil, err
	}

	res.Points = len(series)
	res.Stats = calculator.Compute(series)
	res.Start, res.End, _ = calculator.DateRange(series)

	switch err := c.store.Commit(ticket, res.Source, series); {
	case errors.Is(err, store.ErrStale):
		log.Info("load superseded", zap.Int("points", res.Points))
	case err != nil:
		c.finish(res, err)
		return nil, fmt.Errorf("commit series: %w", err)
	default:
		res.Applied = true
		log.Info("series loaded",
			zap.String("filename", res.Filename),
			zap.Int("rows", res.Rows),
			zap.Int("rejected", res.Rejected),
			zap.Int("points", res.Points))
	}
	c.finish(res, nil)
	return res, nil
}

func (c *Collector) read(ctx context.Context, src Source, res *LoadResult) (model.Series, error) {
	filename, rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	res.Filename = filename

	records, err := parser.ParseFile(filename, rc)
	if err != nil {
		return nil, err
	}
	res.Rows = len(records)

	norm := normalizer.Normalize(records)
	res.Surviving, res.Rejected = norm.Surviving, norm.Rejected
	if err := normalizer.Require(norm); err != nil {
		return nil, err
	}
	return calculator.Window(calculator.SortByDate(norm.Points)), nil
}

func (c *Collector) finish(res *LoadResult, loadErr error) {
	evt := &recorder.LoadEvent{
		UploadID:   res.UploadID,
		Source:     res.Source,
		Filename:   res.Filename,
		Rows:       res.Rows,
		Surviving:  res.Surviving,
		Rejected:   res.Rejected,
		Points:     res.Points,
		Applied:    res.Applied,
		Min:        res.Stats.Min,
		Max:        res.Stats.Max,
		Mean:       res.Stats.Mean,
		ReturnPct:  res.Stats.PeriodReturnPercent,
		ReturnOK:   res.Stats.ReturnDefined,
		RangeStart: res.Start,
		RangeEnd:   res.End,
	}
	if loadErr != nil {
		evt.Error = loadErr.Error()
	}
	if err := c.recorder.RecordLoad(evt); err != nil {
		c.logger.Warn("record load failed", zap.Error(err))
	}

	if c.metrics == nil {
		return
	}
	result := metrics.ResultApplied
	switch {
	case loadErr != nil:
		result = metrics.ResultFailed
	case !res.Applied:
		result = metrics.ResultSuperseded
	}
	c.metrics.Loads.WithLabelValues(res.Source, result).Inc()
	c.metrics.RowsRejected.Add(float64(res.Rejected))
}
