package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/securitycam/central/internal/cache"
	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/notify"
	"github.com/securitycam/central/internal/validate"
)

type EventHandler struct {
	Events data.EventModel
	Cache  *cache.Cameras
	Notify *notify.Publisher
}

// POST /api/v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CameraID        string    `json:"camera_id"`
		Timestamp       time.Time `json:"timestamp"`
		MotionScore     float64   `json:"motion_score"`
		ConfidenceScore *float64  `json:"confidence_score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}
	if fe := validate.CameraID("camera_id", req.CameraID); fe != nil {
		fieldError(w, r, fe)
		return
	}
	if req.Timestamp.IsZero() {
		fieldError(w, r, &validate.FieldError{Field: "timestamp", Reason: "is required"})
		return
	}
	if fe := validate.MotionScore("motion_score", req.MotionScore); fe != nil {
		fieldError(w, r, fe)
		return
	}
	if req.ConfidenceScore != nil {
		if fe := validate.ConfidenceScore("confidence_score", *req.ConfidenceScore); fe != nil {
			fieldError(w, r, fe)
			return
		}
	}

	exists, err := h.Cache.Exists(r.Context(), req.CameraID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !exists {
		respondError(w, r, http.StatusNotFound, kindNotFound, "camera not registered", "camera_id")
		return
	}

	e := &data.Event{
		CameraID:        req.CameraID,
		Timestamp:       req.Timestamp,
		MotionScore:     req.MotionScore,
		ConfidenceScore: req.ConfidenceScore,
	}
	if err := h.Events.Create(r.Context(), e); err != nil {
		writeError(w, r, err)
		return
	}

	h.Notify.Publish(notify.KindCreated, e.ID, e.CameraID)
	respondJSON(w, http.StatusCreated, e)
}

// GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter data.EventFilter
	if cameraID := q.Get("camera_id"); cameraID != "" {
		if fe := validate.CameraID("camera_id", cameraID); fe != nil {
			fieldError(w, r, fe)
			return
		}
		filter.CameraID = cameraID
	}
	if status := q.Get("status"); status != "" {
		switch status {
		case data.EventProcessing, data.EventComplete, data.EventInterrupted, data.EventFailed:
			filter.Status = status
		default:
			fieldError(w, r, &validate.FieldError{Field: "status", Reason: "unknown status"})
			return
		}
	}
	if mp4 := q.Get("mp4_status"); mp4 != "" {
		if fe := validate.MP4Status("mp4_status", mp4); fe != nil {
			fieldError(w, r, fe)
			return
		}
		filter.MP4Status = mp4
	}
	if raw := q.Get("ai_processed"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, r, "ai_processed must be a boolean")
			return
		}
		filter.AIProcessed = &b
	}
	var ok bool
	if filter.Start, ok = parseTimeParam(w, r, "start"); !ok {
		return
	}
	if filter.End, ok = parseTimeParam(w, r, "end"); !ok {
		return
	}

	limit, offset, ok := pageParams(w, r, 50, validate.MaxEventLimit)
	if !ok {
		return
	}

	events, total, err := h.Events.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if events == nil {
		events = []*data.Event{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GET /api/v1/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	e, err := h.Events.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// GET /api/v1/events/{id}/neighbors?camera_id=
func (h *EventHandler) Neighbors(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	cameraID := r.URL.Query().Get("camera_id")
	if cameraID != "" {
		if fe := validate.CameraID("camera_id", cameraID); fe != nil {
			fieldError(w, r, fe)
			return
		}
	}

	if _, err := h.Events.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	prev, next, err := h.Events.Neighbors(r.Context(), id, cameraID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"previous_id": prev,
		"next_id":     next,
	})
}

// PATCH /api/v1/events/{id}/files
//
// Records one artifact arrival. Re-sending the same path is a no-op;
// a different path for an already-set artifact is a 409.
func (h *EventHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req struct {
		FileType string   `json:"file_type"`
		Path     string   `json:"path"`
		Duration *float64 `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}
	if fe := validate.FileType("file_type", req.FileType); fe != nil {
		fieldError(w, r, fe)
		return
	}
	if fe := validate.RelativePath("path", req.Path); fe != nil {
		fieldError(w, r, fe)
		return
	}
	if req.Duration != nil {
		if req.FileType != data.FileVideoH264 {
			fieldError(w, r, &validate.FieldError{Field: "duration", Reason: "only valid for video_h264"})
			return
		}
		if fe := validate.Duration("duration", *req.Duration); fe != nil {
			fieldError(w, r, fe)
			return
		}
	}

	e, err := h.Events.UpdateFile(r.Context(), id, req.FileType, req.Path, req.Duration)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// PATCH /api/v1/events/{id}/status
func (h *EventHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}
	if fe := validate.EventStatus("status", req.Status); fe != nil {
		fieldError(w, r, fe)
		return
	}

	e, err := h.Events.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func eventID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		badRequest(w, r, "event id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(w, r, name+" must be RFC 3339")
		return nil, false
	}
	return &t, true
}

func pageParams(w http.ResponseWriter, r *http.Request, defaultLimit, max int) (limit, offset int, ok bool) {
	return pageParamsNamed(w, r, "limit", "offset", defaultLimit, max)
}

func pageParamsNamed(w http.ResponseWriter, r *http.Request, limitName, offsetName string, defaultLimit, max int) (limit, offset int, ok bool) {
	limit = defaultLimit
	q := r.URL.Query()
	if raw := q.Get(limitName); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, r, limitName+" must be an integer")
			return 0, 0, false
		}
		limit = n
	}
	if fe := validate.Limit(limitName, limit, max); fe != nil {
		fieldError(w, r, fe)
		return 0, 0, false
	}
	if raw := q.Get(offsetName); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, r, offsetName+" must be an integer")
			return 0, 0, false
		}
		offset = n
	}
	if fe := validate.Offset(offsetName, offset); fe != nil {
		fieldError(w, r, fe)
		return 0, 0, false
	}
	return limit, offset, true
}
