package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staybook/apiserver/types"
)

const hotelColumns = `
	h.id, h.name, h.location, h.price_per_night, h.owner_id, h.photo_keys, h.created_at, h.updated_at,
	u.id, u.username, u.email, u.role, u.full_name, u.business_name, u.contact_number, u.password_hash, u.created_at, u.updated_at`

// HotelRepository handles persistence for hotels. Reads resolve the
// owning provider eagerly.
type HotelRepository struct {
	db *sql.DB
}

func NewHotelRepository(db *sql.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

func (r *HotelRepository) GetByID(ctx context.Context, id int) (types.Hotel, error) {
	const query = `
		SELECT ` + hotelColumns + `
		FROM hotels h
		JOIN users u ON u.id = h.owner_id
		WHERE h.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	hotel, err := scanHotelRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Hotel{}, ErrNotFound
		}
		return types.Hotel{}, err
	}
	return hotel, nil
}

func (r *HotelRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.Hotel, error) {
	const query = `
		SELECT ` + hotelColumns + `
		FROM hotels h
		JOIN users u ON u.id = h.owner_id
		WHERE h.owner_id = $1
		ORDER BY h.id`
	return r.list(ctx, query, ownerID)
}

// Search filters by case-insensitive location substring and/or a price
// ceiling. An empty location and nil maxPrice place no restriction.
func (r *HotelRepository) Search(ctx context.Context, location string, maxPrice *decimal.Decimal) ([]types.Hotel, error) {
	const query = `
		SELECT ` + hotelColumns + `
		FROM hotels h
		JOIN users u ON u.id = h.owner_id
		WHERE ($1 = '' OR h.location ILIKE '%' || $1 || '%')
		  AND ($2::numeric IS NULL OR h.price_per_night <= $2::numeric)
		ORDER BY h.id`

	var price any
	if maxPrice != nil {
		price = maxPrice.String()
	}
	return r.list(ctx, query, location, price)
}

func (r *HotelRepository) Create(ctx context.Context, hotel types.Hotel) (types.Hotel, error) {
	now := time.Now()
	hotel.CreatedAt = now
	hotel.UpdatedAt = now

	photosJSON, err := photoKeysJSON(hotel.PhotoKeys)
	if err != nil {
		return types.Hotel{}, err
	}

	const query = `
		INSERT INTO hotels (name, location, price_per_night, owner_id, photo_keys, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		hotel.Name,
		hotel.Location,
		hotel.PricePerNight,
		hotel.OwnerID,
		photosJSON,
		hotel.CreatedAt,
		hotel.UpdatedAt,
	).Scan(&hotel.ID); err != nil {
		return types.Hotel{}, err
	}
	return hotel, nil
}

func (r *HotelRepository) Update(ctx context.Context, hotel types.Hotel) (types.Hotel, error) {
	hotel.UpdatedAt = time.Now()

	photosJSON, err := photoKeysJSON(hotel.PhotoKeys)
	if err != nil {
		return types.Hotel{}, err
	}

	const query = `
		UPDATE hotels
		SET name = $1,
			location = $2,
			price_per_night = $3,
			photo_keys = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		hotel.Name,
		hotel.Location,
		hotel.PricePerNight,
		photosJSON,
		hotel.UpdatedAt,
		hotel.ID,
	)
	if err != nil {
		return types.Hotel{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Hotel{}, err
	}
	if affected == 0 {
		return types.Hotel{}, ErrNotFound
	}
	return hotel, nil
}

// Delete removes a hotel. Its bookings go with it via ON DELETE CASCADE.
func (r *HotelRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM hotels WHERE id = $1`
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

func (r *HotelRepository) list(ctx context.Context, query string, args ...any) ([]types.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hotels := make([]types.Hotel, 0)
	for rows.Next() {
		hotel, err := scanHotelRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, hotel)
	}
	return hotels, rows.Err()
}

func scanHotelRow(scan func(...any) error) (types.Hotel, error) {
	var hotel types.Hotel
	var photosJSON []byte
	err := scan(
		&hotel.ID,
		&hotel.Name,
		&hotel.Location,
		&hotel.PricePerNight,
		&hotel.OwnerID,
		&photosJSON,
		&hotel.CreatedAt,
		&hotel.UpdatedAt,
		&hotel.Owner.ID,
		&hotel.Owner.Username,
		&hotel.Owner.Email,
		&hotel.Owner.Role,
		&hotel.Owner.FullName,
		&hotel.Owner.BusinessName,
		&hotel.Owner.ContactNumber,
		&hotel.Owner.PasswordHash,
		&hotel.Owner.CreatedAt,
		&hotel.Owner.UpdatedAt,
	)
	if err != nil {
		return types.Hotel{}, err
	}

	_ = json.Unmarshal(photosJSON, &hotel.PhotoKeys)
	return hotel, nil
}

func photoKeysJSON(keys []string) ([]byte, error) {
	if keys == nil {
		keys = []string{}
	}
	return json.Marshal(keys)
}
