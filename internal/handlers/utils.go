package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/staybook/apiserver/internal/services"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

func userIDFromContext(ctx context.Context) (int, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case int:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case int64:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return int(subject), nil
	case float64:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return int(subject), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(subject))
		if err != nil || parsed < 1 {
			return 0, errors.New("invalid subject")
		}
		return parsed, nil
	default:
		return 0, errors.New("missing subject")
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error      string                    `json:"error"`
	Violations []services.FieldViolation `json:"violations,omitempty"`
}

// writeDomainError maps the service error taxonomy onto HTTP statuses.
// Unknown errors collapse into a generic 500 so infrastructure details
// never reach clients.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr   *services.ValidationError
		hotelNotFound   *services.HotelNotFoundError
		bookingNotFound *services.BookingNotFoundError
		unauthorized    *services.UnauthorizedError
		invalidBooking  *services.InvalidBookingError
		cancellation    *services.BookingCancellationError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:      validationErr.Error(),
			Violations: validationErr.Violations,
		})
	case errors.As(err, &hotelNotFound):
		writeError(w, http.StatusNotFound, hotelNotFound.Error())
	case errors.As(err, &bookingNotFound):
		writeError(w, http.StatusNotFound, bookingNotFound.Error())
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusForbidden, unauthorized.Error())
	case errors.As(err, &invalidBooking):
		writeError(w, http.StatusConflict, invalidBooking.Error())
	case errors.As(err, &cancellation):
		writeError(w, http.StatusConflict, cancellation.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseIDParam(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
