package api

import (
	"net/http"

	"github.com/securitycam/central/internal/data"
)

type StatsHandler struct {
	Stats data.StatsModel
}

// GET /api/v1/stats/overview?day_limit=&day_offset=
//
// Read-only aggregates; the per-day series is paginated, everything else is
// bounded by the camera/status cardinality.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	dayLimit, dayOffset, ok := pageParamsNamed(w, r, "day_limit", "day_offset", 30, 365)
	if !ok {
		return
	}

	overview, err := h.Stats.Overview(r.Context(), dayLimit, dayOffset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}
