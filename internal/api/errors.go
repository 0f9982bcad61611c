package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/metrics"
	"github.com/bher20/ebillcalc/internal/notification"
	"github.com/bher20/ebillcalc/internal/rates"
	"github.com/bher20/ebillcalc/internal/report"
)

var (
	// errBadRequest marks malformed request bodies and path parameters.
	errBadRequest      = errors.New("api: bad request")
	errStorageDisabled = errors.New("api: storage not configured")
	errJobNotFound     = errors.New("api: job has not run yet")
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, errJobNotFound):
		return http.StatusNotFound, "job_not_found"
	case errors.Is(err, errStorageDisabled):
		return http.StatusServiceUnavailable, "storage_not_configured"
	case errors.Is(err, rates.ErrUnknownTariff):
		return http.StatusNotFound, "unknown_tariff"
	case errors.Is(err, report.ErrNoData):
		return http.StatusBadRequest, "no_data"
	case errors.Is(err, notification.ErrNotConfigured):
		return http.StatusServiceUnavailable, "email_not_configured"
	case errors.Is(err, billing.ErrValidation), errors.Is(err, billing.ErrInvalidInput):
		return http.StatusBadRequest, metrics.ErrorKind(err)
	case errors.Is(err, billing.ErrDuplicateName):
		return http.StatusConflict, metrics.ErrorKind(err)
	case errors.Is(err, billing.ErrNotFound):
		return http.StatusNotFound, metrics.ErrorKind(err)
	case errors.Is(err, billing.ErrInvalidSchedule):
		return http.StatusUnprocessableEntity, metrics.ErrorKind(err)
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func errorField(err error) string {
	var ve *billing.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	var ie *billing.InvalidInputError
	if errors.As(err, &ie) {
		return ie.Field
	}
	var de *billing.DuplicateNameError
	if errors.As(err, &de) {
		return "name"
	}
	return ""
}

// writeError writes err as JSON and returns the status code used.
func writeError(w http.ResponseWriter, err error) int {
	code, kind := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("api: request failed", "err", err)
	} else if metrics.ErrorKind(err) != "internal" {
		metrics.ObserveBillingError(err)
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, code, ErrorResponse{Error: kind, Message: msg, Field: errorField(err)})
	return code
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("api: encode response failed", "err", err)
	}
}
