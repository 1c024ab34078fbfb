package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/excess/internal/domain/types"
)

// ExcessDependencies exposes excess series and baseline comparisons.
type ExcessDependencies interface {
	Excess(ctx context.Context, q types.ExcessQuery) (types.Excess, error)
	Contributions(ctx context.Context, window string, from, to time.Time) ([]types.Contribution, error)
	Divergence(ctx context.Context, a, b string, from, at time.Time, n int) ([]types.Divergence, error)
	PeriodRMSE(ctx context.Context) ([]types.PeriodRMSE, error)
}

// ExcessHandler handles excess requests.
type ExcessHandler struct {
	deps ExcessDependencies
}

// NewExcessHandler creates a new excess handler.
func NewExcessHandler(deps ExcessDependencies) *ExcessHandler {
	return &ExcessHandler{deps: deps}
}

// HandleExcess handles
// GET /excess?baseline=&country=&from=&granularity=&cumulative=.
func (h *ExcessHandler) HandleExcess(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	q := r.URL.Query()
	from, err := dateParam(q, "from")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	cumulative, err := boolParam(q, "cumulative")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	ex, err := h.deps.Excess(r.Context(), types.ExcessQuery{
		Baseline:    q.Get("baseline"),
		Country:     q.Get("country"),
		From:        from,
		Granularity: q.Get("granularity"),
		Cumulative:  cumulative,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// HandleContributions handles GET /contributions?baseline=&from=&to=.
func (h *ExcessHandler) HandleContributions(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	q := r.URL.Query()
	from, err := dateParam(q, "from")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	to, err := dateParam(q, "to")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	contribs, err := h.deps.Contributions(r.Context(), q.Get("baseline"), from, to)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contribs)
}

// HandleDivergence handles GET /divergence?a=&b=&from=&at=&n=.
func (h *ExcessHandler) HandleDivergence(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	q := r.URL.Query()
	from, err := dateParam(q, "from")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	at, err := dateParam(q, "at")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	n, err := intParam(q, "n")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	divs, err := h.deps.Divergence(r.Context(), q.Get("a"), q.Get("b"), from, at, n)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, divs)
}

// HandleRMSE handles GET /rmse.
func (h *ExcessHandler) HandleRMSE(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	rows, err := h.deps.PeriodRMSE(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
