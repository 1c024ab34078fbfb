package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/excess/internal/domain/types"
)

// BaselineDependencies exposes fitted baselines.
type BaselineDependencies interface {
	OptimalBaseline(ctx context.Context) (types.Baseline, error)
	Baseline(ctx context.Context, window, country string) (types.Baseline, error)
}

// BaselineHandler handles baseline requests.
type BaselineHandler struct {
	deps BaselineDependencies
}

// NewBaselineHandler creates a new baseline handler.
func NewBaselineHandler(deps BaselineDependencies) *BaselineHandler {
	return &BaselineHandler{deps: deps}
}

// HandleGetBaseline handles GET /baselines/optimal and
// GET /baselines/{YYYY-YYYY}?country=XXX.
func (h *BaselineHandler) HandleGetBaseline(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	window := strings.TrimPrefix(r.URL.Path, "/baselines/")
	if window == "" || strings.Contains(window, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: expected /baselines/{window}", ErrBadRequest))
		return
	}

	var (
		b   types.Baseline
		err error
	)
	country := r.URL.Query().Get("country")
	if window == "optimal" && country == "" {
		b, err = h.deps.OptimalBaseline(r.Context())
	} else {
		b, err = h.deps.Baseline(r.Context(), window, country)
	}
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
