package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/staybook/apiserver/types"
)

// HotelInput carries the caller-supplied fields for creating or
// updating a hotel.
type HotelInput struct {
	Name          string
	Location      string
	PricePerNight decimal.Decimal
}

// Validate checks every field and returns the aggregated violations,
// or nil when the input is clean.
func (in HotelInput) Validate() *ValidationError {
	var violations []FieldViolation
	if strings.TrimSpace(in.Name) == "" {
		violations = append(violations, FieldViolation{Field: "name", Message: "hotel name is required"})
	}
	if strings.TrimSpace(in.Location) == "" {
		violations = append(violations, FieldViolation{Field: "location", Message: "hotel location is required"})
	}
	if in.PricePerNight.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, FieldViolation{Field: "price_per_night", Message: "price per night must be greater than zero"})
	}
	if violations != nil {
		return newValidationError(violations...)
	}
	return nil
}

// RegisterInput carries the caller-supplied fields for registering an
// account.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	Role          string
	FullName      string
	BusinessName  string
	ContactNumber string
}

// Validate checks presence and role rules. Provider accounts must
// supply the profile fields guests see on listings.
func (in RegisterInput) Validate() *ValidationError {
	var violations []FieldViolation
	if strings.TrimSpace(in.Username) == "" {
		violations = append(violations, FieldViolation{Field: "username", Message: "username is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		violations = append(violations, FieldViolation{Field: "email", Message: "email is required"})
	}
	if in.Password == "" {
		violations = append(violations, FieldViolation{Field: "password", Message: "password is required"})
	}

	switch in.Role {
	case types.RoleUser:
	case types.RoleProvider:
		if strings.TrimSpace(in.FullName) == "" {
			violations = append(violations, FieldViolation{Field: "full_name", Message: "full name is required for providers"})
		}
		if strings.TrimSpace(in.BusinessName) == "" {
			violations = append(violations, FieldViolation{Field: "business_name", Message: "business name is required for providers"})
		}
		if strings.TrimSpace(in.ContactNumber) == "" {
			violations = append(violations, FieldViolation{Field: "contact_number", Message: "contact number is required for providers"})
		}
	default:
		violations = append(violations, FieldViolation{Field: "role", Message: "role must be user or provider"})
	}

	if violations != nil {
		return newValidationError(violations...)
	}
	return nil
}
