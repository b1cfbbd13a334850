package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/securitycam/central/internal/cache"
	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/storage"
	"github.com/securitycam/central/internal/validate"
)

type CameraHandler struct {
	Cameras data.CameraModel
	Stats   data.StatsModel
	Cache   *cache.Cameras
	Root    storage.Root
}

// POST /api/v1/cameras/register
//
// Upsert by stable string: a re-register overwrites name, location and
// address (last-write-wins) and returns the canonical record either way.
func (h *CameraHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CameraID  string `json:"camera_id"`
		Name      string `json:"name"`
		Location  string `json:"location"`
		IPAddress string `json:"ip_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}
	if fe := validate.CameraID("camera_id", req.CameraID); fe != nil {
		fieldError(w, r, fe)
		return
	}
	if fe := validate.Name("name", req.Name, 100); fe != nil {
		fieldError(w, r, fe)
		return
	}

	c := &data.Camera{
		CameraID:  req.CameraID,
		Name:      req.Name,
		Location:  req.Location,
		IPAddress: req.IPAddress,
	}
	if err := h.Cameras.Register(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}

	// Uploads start immediately after registration; the directories must
	// exist before the first artifact lands.
	if err := h.Root.EnsureCameraDirs(c.CameraID); err != nil {
		log.Printf("camera %s: create storage dirs: %v", c.CameraID, err)
	}
	h.Cache.MarkKnown(c.CameraID)

	respondJSON(w, http.StatusCreated, c)
}

// GET /api/v1/cameras
func (h *CameraHandler) List(w http.ResponseWriter, r *http.Request) {
	cameras, err := h.Cameras.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cameras == nil {
		cameras = []*data.Camera{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"cameras": cameras, "total": len(cameras)})
}

// GET /api/v1/cameras/{camera_id}
func (h *CameraHandler) Get(w http.ResponseWriter, r *http.Request) {
	cameraID := chi.URLParam(r, "camera_id")
	if fe := validate.CameraID("camera_id", cameraID); fe != nil {
		fieldError(w, r, fe)
		return
	}

	c, err := h.Cameras.Get(r.Context(), cameraID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// POST /api/v1/cameras/{camera_id}/heartbeat
func (h *CameraHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	cameraID := chi.URLParam(r, "camera_id")
	if fe := validate.CameraID("camera_id", cameraID); fe != nil {
		fieldError(w, r, fe)
		return
	}

	if err := h.Cameras.Heartbeat(r.Context(), cameraID); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/cameras/{camera_id}/stats?hours=24
func (h *CameraHandler) CameraStats(w http.ResponseWriter, r *http.Request) {
	cameraID := chi.URLParam(r, "camera_id")
	if fe := validate.CameraID("camera_id", cameraID); fe != nil {
		fieldError(w, r, fe)
		return
	}

	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, r, "hours must be an integer")
			return
		}
		hours = n
	}
	if fe := validate.Hours("hours", hours); fe != nil {
		fieldError(w, r, fe)
		return
	}

	exists, err := h.Cache.Exists(r.Context(), cameraID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !exists {
		respondError(w, r, http.StatusNotFound, kindNotFound, "camera not registered", "")
		return
	}

	stats, err := h.Stats.CameraStats(r.Context(), cameraID, hours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
