package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staybook/apiserver/internal/services"
	"github.com/staybook/apiserver/types"
)

// BookingHandler provides HTTP handlers for bookings.
type BookingHandler struct {
	bookingService *services.BookingService
	userService    *services.UserService
}

// NewBookingHandler constructs a handler with the provided services.
func NewBookingHandler(bookingService *services.BookingService, userService *services.UserService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		userService:    userService,
	}
}

// BookingRouter registers booking routes on the given router. All
// routes require an authenticated actor.
func BookingRouter(
	r chi.Router,
	bookingService *services.BookingService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewBookingHandler(bookingService, userService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateBooking)
	r.Get("/", handler.MyBookings)
	r.With(handler.requireProvider).Get("/received", handler.ReceivedBookings)
	r.Delete("/{bookingID}", handler.CancelBooking)
}

// CreateBooking reserves a stay for the authenticated user.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, h.userService)
	if !ok {
		return
	}

	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	booking, err := h.bookingService.Book(r.Context(), req.HotelID, req.CheckIn, req.CheckOut, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

// MyBookings lists the authenticated user's bookings, newest check-in
// first.
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, h.userService)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListByUser(r.Context(), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, BookingListResponse{Items: bookings, Total: len(bookings)})
}

// ReceivedBookings lists every booking taken against the provider's
// hotels.
func (h *BookingHandler) ReceivedBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, h.userService)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListByProvider(r.Context(), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, BookingListResponse{Items: bookings, Total: len(bookings)})
}

// CancelBooking cancels one of the authenticated user's bookings.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := loadActor(w, r, h.userService)
	if !ok {
		return
	}

	id, err := parseIDParam(chi.URLParam(r, "bookingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if err := h.bookingService.Cancel(r.Context(), id, actor); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) requireProvider(next http.Handler) http.Handler {
	return requireRole(h.userService, types.RoleProvider, next)
}

// BookingRequest is the JSON payload for creating a booking.
type BookingRequest struct {
	HotelID  int        `json:"hotel_id"`
	CheckIn  types.Date `json:"check_in"`
	CheckOut types.Date `json:"check_out"`
}

// BookingListResponse is the booking list payload.
type BookingListResponse struct {
	Items []types.Booking `json:"items"`
	Total int             `json:"total"`
}
