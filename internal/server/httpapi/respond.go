package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/synscript/synscript/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps the service sentinels onto HTTP statuses. Infrastructure
// failures are 503, never 403 or 404: an outage must not read as a
// permission decision.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, common.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, common.ErrInfrastructure):
		status = http.StatusServiceUnavailable
	}

	// 5xx bodies carry only the taxonomy, never driver or wrapping detail.
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "internal error"
	case http.StatusServiceUnavailable:
		msg = common.ErrInfrastructure.Error()
	}
	respondJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrValidation
	}
	return nil
}
