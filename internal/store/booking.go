package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/staybook/apiserver/types"
)

const exclusionViolation = "23P01"

const bookingColumns = `
	b.id, b.hotel_id, b.user_id, b.check_in, b.check_out, b.created_at,
	h.name, h.location, h.price_per_night, h.owner_id,
	g.id, g.username, g.email, g.role`

const bookingJoins = `
	FROM bookings b
	JOIN hotels h ON h.id = b.hotel_id
	JOIN users g ON g.id = b.user_id`

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetByID(ctx context.Context, id int) (types.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + bookingJoins + `
		WHERE b.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	booking, err := scanBookingRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Booking{}, ErrNotFound
		}
		return types.Booking{}, err
	}
	return booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int) ([]types.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + bookingJoins + `
		WHERE b.user_id = $1
		ORDER BY b.check_in DESC`
	return r.list(ctx, query, userID)
}

func (r *BookingRepository) ListByHotel(ctx context.Context, hotelID int) ([]types.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + bookingJoins + `
		WHERE b.hotel_id = $1`
	return r.list(ctx, query, hotelID)
}

// ListByProvider returns every booking taken against the provider's
// hotels in one query rather than per-hotel lookups.
func (r *BookingRepository) ListByProvider(ctx context.Context, providerID int) ([]types.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + bookingJoins + `
		WHERE h.owner_id = $1
		ORDER BY b.check_in DESC`
	return r.list(ctx, query, providerID)
}

// ListOverlapping returns bookings conflicting with the half-open stay
// [checkIn, checkOut). A stay ending exactly on checkIn, or starting
// exactly on checkOut, does not conflict.
func (r *BookingRepository) ListOverlapping(ctx context.Context, hotelID int, checkIn, checkOut types.Date) ([]types.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + bookingJoins + `
		WHERE b.hotel_id = $1
		  AND b.check_in < $3
		  AND b.check_out > $2`
	return r.list(ctx, query, hotelID, checkIn, checkOut)
}

// ListInWindow returns bookings whose occupied days (checkout day
// included) touch the inclusive window [from, to]. Used for reporting
// unavailable dates, which is a wider view than the conflict rule.
func (r *BookingRepository) ListInWindow(ctx context.Context, hotelID int, from, to types.Date) ([]types.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + bookingJoins + `
		WHERE b.hotel_id = $1
		  AND b.check_in <= $3
		  AND b.check_out >= $2`
	return r.list(ctx, query, hotelID, from, to)
}

// Create inserts a booking after re-checking for conflicts inside a
// transaction. The hotel row is locked FOR UPDATE first, serializing
// concurrent attempts against the same hotel; the bookings_no_overlap
// exclusion constraint catches anything that still slips through.
// Returns ErrNotFound when the hotel is gone and ErrConflict when the
// dates are taken.
func (r *BookingRepository) Create(ctx context.Context, booking types.Booking) (types.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Booking{}, err
	}
	defer tx.Rollback()

	const lockQuery = `SELECT id FROM hotels WHERE id = $1 FOR UPDATE`
	var hotelID int
	if err := tx.QueryRowContext(ctx, lockQuery, booking.HotelID).Scan(&hotelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Booking{}, ErrNotFound
		}
		return types.Booking{}, err
	}

	const conflictQuery = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE hotel_id = $1 AND check_in < $3 AND check_out > $2
		)`
	var conflict bool
	if err := tx.QueryRowContext(ctx, conflictQuery, booking.HotelID, booking.CheckIn, booking.CheckOut).Scan(&conflict); err != nil {
		return types.Booking{}, err
	}
	if conflict {
		return types.Booking{}, ErrConflict
	}

	booking.CreatedAt = time.Now()

	const insertQuery = `
		INSERT INTO bookings (hotel_id, user_id, check_in, check_out, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertQuery,
		booking.HotelID,
		booking.UserID,
		booking.CheckIn,
		booking.CheckOut,
		booking.CreatedAt,
	).Scan(&booking.ID); err != nil {
		return types.Booking{}, translateConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return types.Booking{}, translateConflict(err)
	}
	return booking, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM bookings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]types.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]types.Booking, 0)
	for rows.Next() {
		booking, err := scanBookingRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func scanBookingRow(scan func(...any) error) (types.Booking, error) {
	var booking types.Booking
	err := scan(
		&booking.ID,
		&booking.HotelID,
		&booking.UserID,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.CreatedAt,
		&booking.Hotel.Name,
		&booking.Hotel.Location,
		&booking.Hotel.PricePerNight,
		&booking.Hotel.OwnerID,
		&booking.User.ID,
		&booking.User.Username,
		&booking.User.Email,
		&booking.User.Role,
	)
	if err != nil {
		return types.Booking{}, err
	}
	booking.Hotel.ID = booking.HotelID
	return booking, nil
}

func translateConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == exclusionViolation {
		return ErrConflict
	}
	return err
}
