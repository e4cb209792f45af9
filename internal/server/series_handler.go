package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"StockLens/internal/calculator"
	"StockLens/internal/chart"
	"StockLens/internal/collector"
	"StockLens/internal/model"
	"StockLens/internal/normalizer"
	"StockLens/internal/parser"
	"StockLens/internal/store"
)

// User-facing load errors.
const (
	msgEmptyFile       = "empty file"
	msgMissingColumns  = "missing required columns: Date, Close"
	msgInvalidFileType = "invalid file type"
	msgSuperseded      = "superseded by a newer request"
)

// ErrResponse is the JSON error body.
type ErrResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// RangeInfo is the first and last date of the series.
type RangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// SeriesResponse is the chart-ready view of the stored series.
type SeriesResponse struct {
	State   model.StoreState `json:"state"`
	Version uint64           `json:"version"`
	Source  string           `json:"source,omitempty"`
	Range   *RangeInfo       `json:"range,omitempty"`
	Trace   chart.Trace      `json:"trace"`
}

// StatsResponse carries the statistics panel.
type StatsResponse struct {
	State       model.StoreState `json:"state"`
	Version     uint64           `json:"version"`
	Points      int              `json:"points"`
	Stats       model.Statistics `json:"stats"`
	ReturnLabel string           `json:"return_label"`
	Range       *RangeInfo       `json:"range,omitempty"`
}

// LoadResponse wraps a load result.
type LoadResponse struct {
	*collector.LoadResult
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// SeriesHandler serves upload, chart, statistics and clear.
type SeriesHandler struct {
	store     *store.Store
	collector *collector.Collector
	maxUpload int64
	logger    *zap.Logger
}

func (h *SeriesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/", h.GetSeries)
	r.Delete("/", h.Clear)
	return r
}

// Upload handles POST /api/series. The table comes either as multipart
// field "file" or as the raw body with ?filename=.
func (h *SeriesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.readUpload(w, r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.collector.Load(r.Context(), &collector.ReaderSource{Label: "upload", Filename: filename, Data: data})
	if err != nil {
		status, msg := loadError(err)
		h.fail(w, r, status, msg)
		return
	}
	if !res.Applied {
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, LoadResponse{LoadResult: res, Message: msgSuperseded, Error: msgSuperseded})
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, LoadResponse{LoadResult: res, Message: fmt.Sprintf("Loaded %d rows", res.Points)})
}

func (h *SeriesHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, fmt.Errorf("read upload: %w", err)
		}
		return r.URL.Query().Get("filename"), data, nil
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("multipart field \"file\" is required")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

func loadError(err error) (int, string) {
	var (
		empty       *parser.EmptyInputError
		unsupported *parser.UnsupportedFormatError
		noData      *normalizer.NoValidDataError
	)
	switch {
	case errors.As(err, &empty):
		return http.StatusBadRequest, msgEmptyFile
	case errors.As(err, &noData):
		return http.StatusBadRequest, msgMissingColumns
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, msgInvalidFileType
	case errors.Is(err, store.ErrEmptySeries):
		return http.StatusBadRequest, msgMissingColumns
	default:
		return http.StatusUnprocessableEntity, err.Error()
	}
}

// GetSeries handles GET /api/series.
func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	render.JSON(w, r, SeriesResponse{
		State:   snap.State,
		Version: snap.Version,
		Source:  snap.Source,
		Range:   rangeInfo(snap.Series),
		Trace:   chart.Build(snap.Series),
	})
}

// GetStats handles GET /api/stats.
func (h *SeriesHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	stats := calculator.Compute(snap.Series)
	label := "n/a"
	if stats.ReturnDefined {
		label = fmt.Sprintf("%.2f%%", stats.PeriodReturnPercent)
	}
	render.JSON(w, r, StatsResponse{
		State:       snap.State,
		Version:     snap.Version,
		Points:      len(snap.Series),
		Stats:       stats,
		ReturnLabel: label,
		Range:       rangeInfo(snap.Series),
	})
}

// Clear handles DELETE /api/series.
func (h *SeriesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	cleared := h.store.Clear()
	render.JSON(w, r, map[string]any{"cleared": cleared, "state": h.store.State()})
}

func (h *SeriesHandler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.logger.Info("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("error", msg))
	render.Status(r, status)
	render.JSON(w, r, ErrResponse{Error: msg, RequestID: middleware.GetReqID(r.Context())})
}

func rangeInfo(series model.Series) *RangeInfo {
	start, end, ok := calculator.DateRange(series)
	if !ok {
		return nil
	}
	return &RangeInfo{
		Start: start.Format(time.DateOnly),
		End:   end.Format(time.DateOnly),
		Label: calculator.FormatRange(series),
	}
}
