package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Hotel represents a property listed by a provider. A hotel is owned by
// exactly one provider; only the owner may update or delete it.
type Hotel struct {
	// ID is the unique identifier of the hotel.
	ID int `json:"id" db:"id"`

	// Name is the display name of the hotel.
	Name string `json:"name" db:"name"`

	// Location is free-text describing where the hotel is.
	Location string `json:"location" db:"location"`

	// PricePerNight is the nightly rate, fixed-point with two decimal
	// places. Always greater than zero.
	PricePerNight decimal.Decimal `json:"price_per_night" db:"price_per_night"`

	// OwnerID is the identifier of the provider that owns this hotel.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// Owner is the owning provider, resolved eagerly on reads.
	Owner User `json:"owner" db:"-"`

	// PhotoKeys are object-storage keys of the hotel's photos, in
	// upload order.
	PhotoKeys []string `json:"photo_keys" db:"photo_keys"`

	// CreatedAt is the timestamp at which the hotel was listed.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the listing.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
