package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/insight"
	"StockLens/internal/metrics"
	"StockLens/internal/recorder"
	"StockLens/internal/store"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store.Store
	recorder  recorder.Recorder
	metrics   *metrics.Metrics
	collector *collector.Collector
	provider  insight.Provider
	insights  *insight.Requester
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			a.recorder = recorder.NewNoopRecorder()
		} else {
			a.recorder = sr
		}
	} else {
		a.recorder = recorder.NewNoopRecorder()
	}

	a.store = store.New(logger)
	a.collector = collector.NewCollector(a.store, a.recorder, a.metrics, logger)

	provider, err := insight.NewProvider(ctx, cfg)
	if err != nil {
		a.recorder.Close()
		return nil, err
	}
	a.provider = provider
	a.insights, err = insight.NewRequester(provider, insight.Options{
		Limit:         cfg.Insight.MaxPoints,
		CacheSize:     cfg.Insight.CacheSize,
		RatePerMinute: cfg.Insight.RatePerMinute,
	}, a.recorder, a.metrics, logger)
	if err != nil {
		a.recorder.Close()
		return nil, err
	}
	logger.Info("insight provider ready", zap.String("provider", provider.Name()))
	return a, nil
}

// source builds the reload source named in the config, or nil.
func (a *app) source() collector.Source {
	s := a.cfg.Source
	switch s.Kind {
	case config.SourceFile:
		return &collector.FileSource{Path: s.Path}
	case config.SourceURL:
		return collector.NewURLSource(s.URL, s.Token, a.cfg.Proxy)
	case config.SourceYahoo:
		return collector.NewYahooSource(s.Symbol, s.Range, a.cfg.Proxy)
	default:
		return nil
	}
}

func (a *app) watchDebounce() time.Duration {
	return time.Duration(a.cfg.Watch.DebounceMS) * time.Millisecond
}

func (a *app) close() {
	if err := a.recorder.Close(); err != nil {
		a.logger.Warn("close recorder", zap.Error(err))
	}
	_ = a.logger.Sync()
}
