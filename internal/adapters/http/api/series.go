package api

import (
	"context"
	"net/http"

	"github.com/okian/excess/internal/domain/types"
)

// SeriesDependencies exposes the kept countries and their observations.
type SeriesDependencies interface {
	Countries(ctx context.Context) ([]types.Country, error)
	Series(ctx context.Context, country string) ([]types.SeriesPoint, error)
}

// SeriesHandler handles country and series requests.
type SeriesHandler struct {
	deps SeriesDependencies
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(deps SeriesDependencies) *SeriesHandler {
	return &SeriesHandler{deps: deps}
}

// HandleCountries handles GET /countries.
func (h *SeriesHandler) HandleCountries(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	countries, err := h.deps.Countries(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

// HandleSeries handles GET /series?country=XXX. Without a country the
// aggregate is returned.
func (h *SeriesHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	points, err := h.deps.Series(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
