package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"novadrive/internal/db"
	apperrors "novadrive/internal/errors"
	"novadrive/internal/logger"
	"novadrive/internal/pricing"
	"novadrive/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	{pricing.ErrInvalidDuration, http.StatusBadRequest},
	{pricing.ErrUnknownDurationKind, http.StatusBadRequest},
	{service.ErrInvalidBookingRequest, http.StatusBadRequest},
	{service.ErrUnsupportedPaymentMethod, http.StatusBadRequest},
	{service.ErrInvalidDateRange, http.StatusBadRequest},
	{service.ErrInvalidRateCard, http.StatusBadRequest},
	{service.ErrInvalidAdmin, http.StatusBadRequest},
	{service.ErrInvalidFilter, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrVehicleNotFound, http.StatusNotFound},
	{service.ErrBookingNotFound, http.StatusNotFound},
	{service.ErrVehicleUnavailable, http.StatusConflict},
	{service.ErrCancellationWindow, http.StatusConflict},
	{service.ErrBookingNotCancellable, http.StatusConflict},
	{db.ErrRateCardIncomplete, http.StatusConflict},
}

// httpError maps domain errors to an HTTPError. Anything unrecognised is a 500
// and its message is not exposed.
func httpError(err error) *apperrors.HTTPError {
	if he, ok := apperrors.As(err); ok {
		return he
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return apperrors.NewHTTPError(s.code, err.Error())
		}
	}
	return apperrors.ErrInternal()
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	he := httpError(err)
	if he.Code >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, he.Code, ErrorResponse{Error: he.Message})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.ErrBadRequest("invalid request body")
	}
	return nil
}
