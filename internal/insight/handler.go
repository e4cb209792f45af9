package insight

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"StockLens/internal/model"
)

// Only the shape of points is checked; entries go to the provider as sent.
type analyzeRequest struct {
	Points []json.RawMessage `json:"points" validate:"required,min=1"`
}

type analyzeResponse struct {
	Insights string `json:"insights,omitempty"`
	Error    string `json:"error,omitempty"`
}

// AnalyzeHandler serves one-shot analysis of a posted {points} payload
// without touching the stored series.
type AnalyzeHandler struct {
	provider      Provider
	allowedOrigin string
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewAnalyzeHandler answers CORS requests for allowedOrigin, or any origin
// when it is empty.
func NewAnalyzeHandler(p Provider, allowedOrigin string, logger *zap.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &AnalyzeHandler{
		provider:      p,
		allowedOrigin: allowedOrigin,
		validate:      validator.New(),
		logger:        logger.Named("analyze"),
	}
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", h.allowedOrigin)
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	var typeErr *json.UnmarshalTypeError
	err := render.DecodeJSON(r.Body, &req)
	switch {
	case errors.As(err, &typeErr):
		h.reply(w, r, http.StatusBadRequest, analyzeResponse{Error: "Invalid payload"})
		return
	case err != nil:
		h.reply(w, r, http.StatusInternalServerError, analyzeResponse{Error: err.Error()})
		return
	}
	if h.validate.Struct(&req) != nil {
		h.reply(w, r, http.StatusBadRequest, analyzeResponse{Error: "Invalid payload"})
		return
	}
	points, err := decodePoints(req.Points)
	if err != nil {
		h.reply(w, r, http.StatusInternalServerError, analyzeResponse{Error: err.Error()})
		return
	}

	referer := r.Header.Get("Origin")
	if referer == "" {
		referer = r.Header.Get("Referer")
	}
	ctx := WithAttribution(r.Context(), referer, r.Header.Get("X-Title"))

	text, err := h.provider.Generate(ctx, tail(points, DefaultLimit))
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		h.reply(w, r, http.StatusBadRequest, analyzeResponse{Error: "Missing " + h.provider.KeyName()})
	case err != nil:
		h.logger.Warn("analysis failed", zap.Error(err))
		h.reply(w, r, http.StatusInternalServerError, analyzeResponse{Error: err.Error()})
	default:
		h.reply(w, r, http.StatusOK, analyzeResponse{Insights: text})
	}
}

func (h *AnalyzeHandler) reply(w http.ResponseWriter, r *http.Request, status int, body analyzeResponse) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

func decodePoints(raw []json.RawMessage) ([]model.ExportPoint, error) {
	points := make([]model.ExportPoint, len(raw))
	for i, p := range raw {
		if err := json.Unmarshal(p, &points[i]); err != nil {
			return nil, err
		}
	}
	return points, nil
}
