package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/securitycam/central/internal/data"
)

type HealthHandler struct {
	DB           *sql.DB
	ProbeTimeout time.Duration
}

// GET /api/v1/health
//
// Healthy only when the store answers a trivial probe inside the bound.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	timeout := h.ProbeTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	if err := data.Ping(r.Context(), h.DB, timeout); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"reason": "database probe failed: " + err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
