package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/staybook/apiserver/internal/services"
)

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &services.ValidationError{Violations: []services.FieldViolation{{Field: "name", Message: "hotel name is required"}}}, http.StatusBadRequest},
		{"hotel not found", &services.HotelNotFoundError{ID: 7}, http.StatusNotFound},
		{"booking not found", &services.BookingNotFoundError{ID: 7}, http.StatusNotFound},
		{"unauthorized", &services.UnauthorizedError{Action: "update this hotel"}, http.StatusForbidden},
		{"invalid booking", &services.InvalidBookingError{Reason: "these dates are already booked; please choose different dates"}, http.StatusConflict},
		{"cancellation window", &services.BookingCancellationError{Reason: "cannot cancel bookings less than 24 hours before check-in"}, http.StatusConflict},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("error message missing")
			}
			if tc.wantStatus == http.StatusInternalServerError && body.Error != "internal error" {
				t.Fatalf("internal errors must not leak details, got %q", body.Error)
			}
			if tc.name == "validation" && len(body.Violations) != 1 {
				t.Fatalf("validation response should carry violations, got %+v", body)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	if id, err := parseIDParam(" 42 "); err != nil || id != 42 {
		t.Fatalf("parseIDParam(42) = %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "abc"} {
		if _, err := parseIDParam(raw); err == nil {
			t.Fatalf("parseIDParam(%q) should fail", raw)
		}
	}
}
