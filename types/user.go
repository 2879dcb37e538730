package types

import "time"

// Roles a user account can hold. The role is fixed at registration.
const (
	// RoleUser marks an account that searches and books hotels.
	RoleUser = "user"

	// RoleProvider marks an account that lists and manages hotels.
	RoleProvider = "provider"
)

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. Unique across all accounts.
	Email string `json:"email" db:"email"`

	// Role is either RoleUser or RoleProvider. It never changes after
	// registration.
	Role string `json:"role" db:"role"`

	// FullName is the user's display or full name. Optional for
	// regular users, required for providers.
	FullName string `json:"full_name,omitempty" db:"full_name"`

	// BusinessName is the trading name of a provider. Empty for
	// regular users.
	BusinessName string `json:"business_name,omitempty" db:"business_name"`

	// ContactNumber is a phone number providers publish for their
	// guests. Empty for regular users.
	ContactNumber string `json:"contact_number,omitempty" db:"contact_number"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsProvider reports whether the user holds the provider role.
func (u User) IsProvider() bool {
	return u.Role == RoleProvider
}
