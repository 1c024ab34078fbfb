package api

import (
	"context"
	"net/http"

	"github.com/okian/excess/internal/domain/types"
)

// ReportDependencies exposes the latest analysis summary.
type ReportDependencies interface {
	Report(ctx context.Context) (types.Report, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	deps          ReportDependencies
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps ReportDependencies, statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{deps: deps, statsProvider: statsProvider}
}

type statsResponse struct {
	Run     *types.Report  `json:"run"`
	Runtime map[string]any `json:"runtime,omitempty"`
}

// HandleStats handles GET /stats requests. Runtime statistics are served
// even before the first analysis completes.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	var resp statsResponse
	if h.statsProvider != nil {
		resp.Runtime = h.statsProvider.GetStats()
	}
	rep, err := h.deps.Report(r.Context())
	switch {
	case err == nil:
		resp.Run = &rep
	case resp.Runtime == nil:
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
