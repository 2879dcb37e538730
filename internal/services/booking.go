package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/staybook/apiserver/internal/store"
	"github.com/staybook/apiserver/types"
)

// Event channels for booking lifecycle notifications.
const (
	ChannelBookingCreated   = "booking.created"
	ChannelBookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published on booking lifecycle channels.
type BookingEvent struct {
	Type      string     `json:"type"`
	BookingID int        `json:"booking_id"`
	HotelID   int        `json:"hotel_id"`
	UserID    int        `json:"user_id"`
	CheckIn   types.Date `json:"check_in"`
	CheckOut  types.Date `json:"check_out"`
}

// BookingRepository defines persistence operations for bookings.
type BookingRepository interface {
	GetByID(ctx context.Context, id int) (types.Booking, error)
	ListByUser(ctx context.Context, userID int) ([]types.Booking, error)
	ListByHotel(ctx context.Context, hotelID int) ([]types.Booking, error)
	ListByProvider(ctx context.Context, providerID int) ([]types.Booking, error)
	ListOverlapping(ctx context.Context, hotelID int, checkIn, checkOut types.Date) ([]types.Booking, error)
	ListInWindow(ctx context.Context, hotelID int, from, to types.Date) ([]types.Booking, error)
	Create(ctx context.Context, booking types.Booking) (types.Booking, error)
	Delete(ctx context.Context, id int) error
}

// EventPublisher publishes booking lifecycle events. Publishing is
// best-effort; failures are logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// BookingService encapsulates the booking engine: date validation,
// conflict detection, creation, cancellation, and the read-side
// aggregate queries.
type BookingService struct {
	repo   BookingRepository
	hotels *HotelService
	events EventPublisher
	cache  AvailabilityCache
	log    zerolog.Logger
}

func NewBookingService(repo BookingRepository, hotels *HotelService, events EventPublisher, cache AvailabilityCache, log zerolog.Logger) *BookingService {
	return &BookingService{repo: repo, hotels: hotels, events: events, cache: cache, log: log}
}

// Book reserves [checkIn, checkOut) at the hotel for the actor. The
// checks run strictly in order and short-circuit: date presence, date
// sanity, hotel existence, then conflicts against existing stays. The
// conflict check and insert are atomic in the store, so two concurrent
// attempts for overlapping dates cannot both succeed.
func (s *BookingService) Book(ctx context.Context, hotelID int, checkIn, checkOut types.Date, actor types.User) (types.Booking, error) {
	if err := validateBookingDates(checkIn, checkOut); err != nil {
		return types.Booking{}, err
	}

	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return types.Booking{}, err
	}

	booking, err := s.repo.Create(ctx, types.Booking{
		HotelID:  hotel.ID,
		UserID:   actor.ID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return types.Booking{}, &InvalidBookingError{Reason: "these dates are already booked; please choose different dates"}
		case errors.Is(err, store.ErrNotFound):
			return types.Booking{}, &HotelNotFoundError{ID: hotelID}
		default:
			return types.Booking{}, fmt.Errorf("unable to process booking: %w", err)
		}
	}

	booking.Hotel = hotel
	booking.User = actor

	s.invalidate(ctx, hotel.ID)
	s.publish(ctx, ChannelBookingCreated, booking)
	return booking, nil
}

func validateBookingDates(checkIn, checkOut types.Date) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return newValidationError(FieldViolation{Field: "dates", Message: "check-in and check-out dates are required"})
	}
	if checkIn.Before(types.Today()) {
		return &InvalidBookingError{Reason: "check-in date cannot be in the past"}
	}
	if !checkIn.Before(checkOut) {
		return &InvalidBookingError{Reason: "check-out date must be after check-in date"}
	}
	return nil
}

// Cancel removes a booking. Only the guest who made it may cancel, and
// only while check-in is at least a full calendar day away: the
// original 24-hour window is approximated at day granularity, so a
// booking checking in today (or earlier) can no longer be cancelled.
func (s *BookingService) Cancel(ctx context.Context, bookingID int, actor types.User) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &BookingNotFoundError{ID: bookingID}
		}
		return fmt.Errorf("unable to find booking with ID %d: %w", bookingID, err)
	}

	if err := RequireOwnership(actor, booking.UserID, "cancel bookings that don't belong to you"); err != nil {
		return err
	}

	if booking.CheckIn.Before(types.Today().AddDays(1)) {
		return &BookingCancellationError{Reason: "cannot cancel bookings less than 24 hours before check-in"}
	}

	if err := s.repo.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &BookingNotFoundError{ID: bookingID}
		}
		return fmt.Errorf("unable to cancel booking: %w", err)
	}

	s.invalidate(ctx, booking.HotelID)
	s.publish(ctx, ChannelBookingCancelled, booking)
	return nil
}

// ListByUser returns the actor's bookings, most recent check-in first.
func (s *BookingService) ListByUser(ctx context.Context, user types.User) ([]types.Booking, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// ListByHotel returns every booking for a single hotel.
func (s *BookingService) ListByHotel(ctx context.Context, hotel types.Hotel) ([]types.Booking, error) {
	return s.repo.ListByHotel(ctx, hotel.ID)
}

// ListByProvider returns every booking taken against the provider's
// hotels.
func (s *BookingService) ListByProvider(ctx context.Context, provider types.User) ([]types.Booking, error) {
	return s.repo.ListByProvider(ctx, provider.ID)
}

// FindByID returns a booking with its hotel and guest resolved.
func (s *BookingService) FindByID(ctx context.Context, id int) (types.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Booking{}, &BookingNotFoundError{ID: id}
		}
		return types.Booking{}, fmt.Errorf("unable to find booking with ID %d: %w", id, err)
	}
	return booking, nil
}

// UnavailableDates expands every stay touching the inclusive window
// [from, to] into a distinct, sorted list of occupied dates. The
// checkout day is reported as occupied here even though it accepts a
// new check-in: this is the occupancy view, not the bookability rule.
func (s *BookingService) UnavailableDates(ctx context.Context, hotelID int, from, to types.Date) ([]types.Date, error) {
	if _, err := s.hotels.GetByID(ctx, hotelID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if dates, ok := s.cache.Get(ctx, hotelID, from, to); ok {
			return dates, nil
		}
	}

	bookings, err := s.repo.ListInWindow(ctx, hotelID, from, to)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve unavailable dates for hotel %d: %w", hotelID, err)
	}

	seen := make(map[types.Date]bool)
	dates := make([]types.Date, 0)
	for _, b := range bookings {
		for d := b.CheckIn; !d.After(b.CheckOut); d = d.AddDays(1) {
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if s.cache != nil {
		s.cache.Set(ctx, hotelID, from, to, dates)
	}
	return dates, nil
}

// AreDatesAvailable reports whether [checkIn, checkOut) is free of
// conflicts right now. Best-effort: a concurrent booking can still win
// the race, which Book resolves authoritatively.
func (s *BookingService) AreDatesAvailable(ctx context.Context, hotelID int, checkIn, checkOut types.Date) (bool, error) {
	if _, err := s.hotels.GetByID(ctx, hotelID); err != nil {
		return false, err
	}

	conflicts, err := s.repo.ListOverlapping(ctx, hotelID, checkIn, checkOut)
	if err != nil {
		return false, fmt.Errorf("unable to check date availability for hotel %d: %w", hotelID, err)
	}
	return len(conflicts) == 0, nil
}

func (s *BookingService) publish(ctx context.Context, channel string, booking types.Booking) {
	if s.events == nil {
		return
	}

	event := BookingEvent{
		Type:      channel,
		BookingID: booking.ID,
		HotelID:   booking.HotelID,
		UserID:    booking.UserID,
		CheckIn:   booking.CheckIn,
		CheckOut:  booking.CheckOut,
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Str("channel", channel).Msg("failed to encode booking event")
		return
	}
	if _, err := s.events.Publish(ctx, channel, data, map[string]string{"type": channel}); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Int("booking_id", booking.ID).Msg("failed to publish booking event")
	}
}

func (s *BookingService) invalidate(ctx context.Context, hotelID int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, hotelID)
	}
}
