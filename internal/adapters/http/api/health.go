package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/excess/pkg/metrics"
)

// HealthHandler handles liveness and metrics requests.
type HealthHandler struct {
	deps    ReportDependencies
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps ReportDependencies) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
	RunID  string `json:"run_id,omitempty"`
}

// HandleHealth handles GET /healthz. The process is live as soon as it
// serves; ready reports whether an analysis has completed.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	resp := healthResponse{Status: "ok"}
	if rep, err := h.deps.Report(r.Context()); err == nil {
		resp.Ready = true
		resp.RunID = rep.RunID
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMetrics serves the Prometheus exposition of the custom registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
