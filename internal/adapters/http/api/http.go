// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/excess/internal/domain/excess"
	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ReportDependencies
	SeriesDependencies
	BaselineDependencies
	ExcessDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	seriesHandler   *SeriesHandler
	baselineHandler *BaselineHandler
	excessHandler   *ExcessHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(deps, statsProvider),
		seriesHandler:   NewSeriesHandler(deps),
		baselineHandler: NewBaselineHandler(deps),
		excessHandler:   NewExcessHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/countries", MetricsMiddleware(s.seriesHandler.HandleCountries, "countries"))
	mux.HandleFunc("/series", MetricsMiddleware(s.seriesHandler.HandleSeries, "series"))
	mux.HandleFunc("/baselines/", MetricsMiddleware(s.baselineHandler.HandleGetBaseline, "baselines"))
	mux.HandleFunc("/excess", MetricsMiddleware(s.excessHandler.HandleExcess, "excess"))
	mux.HandleFunc("/contributions", MetricsMiddleware(s.excessHandler.HandleContributions, "contributions"))
	mux.HandleFunc("/divergence", MetricsMiddleware(s.excessHandler.HandleDivergence, "divergence"))
	mux.HandleFunc("/rmse", MetricsMiddleware(s.excessHandler.HandleRMSE, "rmse"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates upstream errors to a status and error code.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidWindow),
		errors.Is(err, model.ErrInvalidArgument),
		errors.Is(err, excess.ErrUnknownGranularity):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrNoBaseline):
		return http.StatusUnprocessableEntity, "no_baseline"
	case errors.Is(err, model.ErrNotReady):
		return http.StatusServiceUnavailable, "not_ready"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// allowGet rejects anything but GET and HEAD.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	return false
}
