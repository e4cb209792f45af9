package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"StockLens/internal/collector"
	"StockLens/internal/insight"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/store"
)

// Deps are the components the HTTP surface exposes.
type Deps struct {
	Store       *store.Store
	Collector   *collector.Collector
	Insights    *insight.Requester
	Analyze     http.Handler
	Metrics     *metrics.Metrics
	Hub         *Hub
	Logger      *zap.Logger
	MaxUploadMB int64
}

// Server owns the router and the listening http.Server.
type Server struct {
	deps   Deps
	router chi.Router
	logger *zap.Logger
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxUploadMB <= 0 {
		deps.MaxUploadMB = 10
	}
	s := &Server{deps: deps, logger: deps.Logger.Named("http")}
	s.router = s.routes()
	if deps.Hub != nil {
		s.bridge()
	}
	return s
}

// SeriesEvent is pushed to websocket clients when the series changes.
type SeriesEvent struct {
	State   model.StoreState `json:"state"`
	Version uint64           `json:"version"`
	Source  string           `json:"source,omitempty"`
	Points  int              `json:"points"`
	Range   *RangeInfo       `json:"range,omitempty"`
}

// bridge forwards store and insight changes to the websocket hub.
func (s *Server) bridge() {
	hub := s.deps.Hub
	s.deps.Store.Subscribe(func(snap model.Snapshot) {
		hub.Publish(EventSeries, SeriesEvent{
			State:   snap.State,
			Version: snap.Version,
			Source:  snap.Source,
			Points:  len(snap.Series),
			Range:   rangeInfo(snap.Series),
		})
	})
	if s.deps.Insights != nil {
		s.deps.Insights.OnChange(func(st insight.State) {
			hub.Publish(EventInsight, st)
		})
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok", "state": string(s.deps.Store.State())})
	})
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		series := &SeriesHandler{
			store:     s.deps.Store,
			collector: s.deps.Collector,
			maxUpload: s.deps.MaxUploadMB << 20,
			logger:    s.logger,
		}
		r.Mount("/series", series.Routes())
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/stats", series.GetStats)

		if s.deps.Insights != nil {
			ih := &InsightHandler{requester: s.deps.Insights}
			r.Mount("/insights", ih.Routes())
		}
		if s.deps.Analyze != nil {
			r.Handle("/analyze-stock", s.deps.Analyze)
		}
		if s.deps.Hub != nil {
			r.Get("/ws", s.deps.Hub.ServeHTTP)
		}
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
