package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/streamforge/tubeauth"
)

// envelope is the uniform response body shape.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// sessionTerminated reports whether a refresh rejection means the token
// lineage is dead and the client must log in again. Rate-limit and
// store-availability failures are retryable with the same token.
func sessionTerminated(err error) bool {
	return errors.Is(err, tubeauth.ErrUnauthorized) ||
		errors.Is(err, tubeauth.ErrTokenReused) ||
		errors.Is(err, tubeauth.ErrInvalidCredentials)
}

// writeError maps engine errors to HTTP statuses. Authentication failures
// all collapse to 401 with a generic message so the wire never reveals
// which check failed.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tubeauth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, nil, "invalid credentials")
	case errors.Is(err, tubeauth.ErrUnauthorized),
		errors.Is(err, tubeauth.ErrTokenReused):
		writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
	case errors.Is(err, tubeauth.ErrLoginRateLimited),
		errors.Is(err, tubeauth.ErrRefreshRateLimited):
		writeJSON(w, http.StatusTooManyRequests, nil, "too many requests")
	case errors.Is(err, tubeauth.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, nil, "service temporarily unavailable")
	default:
		writeJSON(w, http.StatusInternalServerError, nil, "internal server error")
	}
}
