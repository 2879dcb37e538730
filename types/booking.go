package types

import "time"

// Booking represents a reserved stay at a hotel. The stay occupies the
// half-open range [CheckIn, CheckOut): the checkout day itself is free
// for the next guest's check-in.
type Booking struct {
	// ID is the unique identifier of the booking.
	ID int `json:"id" db:"id"`

	// HotelID is the identifier of the booked hotel.
	HotelID int `json:"hotel_id" db:"hotel_id"`

	// Hotel is the booked hotel, resolved on reads.
	Hotel Hotel `json:"hotel" db:"-"`

	// UserID is the identifier of the guest who made the booking.
	UserID int `json:"user_id" db:"user_id"`

	// User is the booking guest, resolved on reads.
	User User `json:"user" db:"-"`

	// CheckIn is the first occupied date of the stay.
	CheckIn Date `json:"check_in" db:"check_in"`

	// CheckOut is the departure date. Always after CheckIn.
	CheckOut Date `json:"check_out" db:"check_out"`

	// CreatedAt is the timestamp at which the booking was made.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Overlaps reports whether the stay intersects [checkIn, checkOut)
// under half-open semantics. Touching at a boundary is not an overlap,
// which is what allows a same-day checkout/check-in handoff.
func (b Booking) Overlaps(checkIn, checkOut Date) bool {
	return b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut)
}
