package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/middleware"
	"github.com/securitycam/central/internal/validate"
)

// Machine-readable error kinds carried in every error payload.
const (
	kindBadRequest  = "bad_request"
	kindNotFound    = "not_found"
	kindConflict    = "conflict"
	kindConstraint  = "constraint_violation"
	kindUnavailable = "unavailable"
	kindInternal    = "internal"
)

type errorPayload struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, kind, message, field string) {
	respondJSON(w, status, errorPayload{
		Error:     message,
		Kind:      kind,
		Field:     field,
		RequestID: middleware.RequestID(r.Context()),
	})
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusBadRequest, kindBadRequest, message, "")
}

func fieldError(w http.ResponseWriter, r *http.Request, fe *validate.FieldError) {
	respondError(w, r, http.StatusBadRequest, kindBadRequest, fe.Error(), fe.Field)
}

// writeError maps store errors to the API's status codes: 404 NotFound,
// 409 Conflict, 422 ConstraintViolation, 503 Unavailable, 500 otherwise.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *validate.FieldError
	switch {
	case errors.As(err, &fe):
		fieldError(w, r, fe)
	case errors.Is(err, data.ErrNotFound):
		respondError(w, r, http.StatusNotFound, kindNotFound, err.Error(), "")
	case errors.Is(err, data.ErrConflict):
		respondError(w, r, http.StatusConflict, kindConflict, err.Error(), "")
	case errors.Is(err, data.ErrConstraint):
		respondError(w, r, http.StatusUnprocessableEntity, kindConstraint, err.Error(), "")
	case errors.Is(err, data.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, kindUnavailable, "store unavailable", "")
	default:
		respondError(w, r, http.StatusInternalServerError, kindInternal, "internal error", "")
	}
}
