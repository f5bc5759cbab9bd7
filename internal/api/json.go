package api

import (
	"encoding/json"
	"net/http"

	"burnrate/internal/apierr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// invalid builds a Validation error for malformed request bodies.
func invalid(msg string) error {
	return apierr.New(apierr.Validation, "VALIDATION", msg)
}

// writeError maps an apierr.Error (or a plain error) to the appropriate
// HTTP status and a stable JSON error body.
func writeError(w http.ResponseWriter, err error) {
	ae, ok := apierr.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": map[string]interface{}{"kind": apierr.Internal, "code": "INTERNAL", "message": err.Error()},
		})
		return
	}
	status := http.StatusInternalServerError
	switch ae.Kind {
	case apierr.Unauthorized:
		status = http.StatusUnauthorized
	case apierr.NotFound:
		status = http.StatusNotFound
	case apierr.Conflict, apierr.TransactionConflict:
		status = http.StatusConflict
	case apierr.Validation, apierr.Precondition:
		status = http.StatusBadRequest
	case apierr.RateLimited:
		status = http.StatusTooManyRequests
		if ae.RetryAfterMS > 0 {
			w.Header().Set("Retry-After", "1")
		}
	case apierr.QuotaExceeded:
		status = http.StatusTooManyRequests
	case apierr.Transient:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"kind": ae.Kind, "code": ae.Code, "message": ae.Message, "correlation_id": ae.CorrelationID,
		},
	})
}
