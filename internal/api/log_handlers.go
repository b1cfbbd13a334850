package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/validate"
)

type LogHandler struct {
	Logs data.LogModel
}

// MaxLogBatch bounds one ingest request.
const MaxLogBatch = 1000

// POST /api/v1/logs
//
// Batch insert. Every line is validated before any store access; one bad
// line rejects the whole batch.
func (h *LogHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Logs []struct {
			Source    string    `json:"source"`
			Timestamp time.Time `json:"timestamp"`
			Level     string    `json:"level"`
			Message   string    `json:"message"`
		} `json:"logs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "invalid JSON body")
		return
	}
	if len(req.Logs) == 0 {
		fieldError(w, r, &validate.FieldError{Field: "logs", Reason: "must not be empty"})
		return
	}
	if len(req.Logs) > MaxLogBatch {
		fieldError(w, r, &validate.FieldError{
			Field: "logs", Reason: fmt.Sprintf("at most %d lines per batch", MaxLogBatch)})
		return
	}

	lines := make([]data.LogLine, len(req.Logs))
	for i, l := range req.Logs {
		field := fmt.Sprintf("logs[%d]", i)
		if fe := validate.Source(field+".source", l.Source); fe != nil {
			fieldError(w, r, fe)
			return
		}
		if fe := validate.Level(field+".level", l.Level); fe != nil {
			fieldError(w, r, fe)
			return
		}
		if l.Timestamp.IsZero() {
			fieldError(w, r, &validate.FieldError{Field: field + ".timestamp", Reason: "is required"})
			return
		}
		if l.Message == "" {
			fieldError(w, r, &validate.FieldError{Field: field + ".message", Reason: "is required"})
			return
		}
		lines[i] = data.LogLine{
			Source:    l.Source,
			Timestamp: l.Timestamp,
			Level:     l.Level,
			Message:   l.Message,
		}
	}

	first, last, err := h.Logs.InsertBatch(r.Context(), lines)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"accepted": len(lines),
		"first_id": first,
		"last_id":  last,
	})
}

// GET /api/v1/logs
//
// Paginated query; ?after_id= switches to watermark-tail mode (ascending by
// ID, no offset).
func (h *LogHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	limit, offset, ok := pageParams(w, r, 100, validate.MaxLogLimit)
	if !ok {
		return
	}

	if raw := q.Get("after_id"); raw != "" {
		afterID, err := strconv.Atoi(raw)
		if err != nil || afterID < 0 {
			badRequest(w, r, "after_id must be a non-negative integer")
			return
		}
		h.respondAfterID(w, r, afterID, filter, limit)
		return
	}

	ascending := false
	switch q.Get("order") {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		badRequest(w, r, "order must be asc or desc")
		return
	}

	lines, total, err := h.Logs.List(r.Context(), filter, ascending, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if lines == nil {
		lines = []*data.LogLine{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"logs":   lines,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GET /api/v1/logs/after/{id}
func (h *LogHandler) QueryAfterID(w http.ResponseWriter, r *http.Request) {
	afterID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || afterID < 0 {
		badRequest(w, r, "id must be a non-negative integer")
		return
	}

	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	limit, _, ok := pageParams(w, r, 100, validate.MaxLogLimit)
	if !ok {
		return
	}
	h.respondAfterID(w, r, afterID, filter, limit)
}

func (h *LogHandler) respondAfterID(w http.ResponseWriter, r *http.Request, afterID int, filter data.LogFilter, limit int) {
	lines, err := h.Logs.ListAfterID(r.Context(), afterID, filter, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if lines == nil {
		lines = []*data.LogLine{}
	}
	watermark := afterID
	if len(lines) > 0 {
		watermark = lines[len(lines)-1].ID
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"logs":      lines,
		"watermark": watermark,
	})
}

func (h *LogHandler) parseFilter(w http.ResponseWriter, r *http.Request) (data.LogFilter, bool) {
	q := r.URL.Query()
	var filter data.LogFilter

	if source := q.Get("source"); source != "" && source != "all" {
		if fe := validate.Source("source", source); fe != nil {
			fieldError(w, r, fe)
			return filter, false
		}
		filter.Source = source
	}
	if raw := q.Get("levels"); raw != "" {
		for _, level := range strings.Split(raw, ",") {
			level = strings.TrimSpace(level)
			if fe := validate.Level("levels", level); fe != nil {
				fieldError(w, r, fe)
				return filter, false
			}
			filter.Levels = append(filter.Levels, level)
		}
	}
	var ok bool
	if filter.Start, ok = parseTimeParam(w, r, "start"); !ok {
		return filter, false
	}
	if filter.End, ok = parseTimeParam(w, r, "end"); !ok {
		return filter, false
	}
	return filter, true
}
