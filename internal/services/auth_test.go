package services

import (
	"errors"
	"testing"

	"github.com/staybook/apiserver/types"
)

func TestRequireRole(t *testing.T) {
	provider := types.User{ID: 1, Role: types.RoleProvider}
	guest := types.User{ID: 2, Role: types.RoleUser}

	if err := RequireRole(provider, types.RoleProvider, "manage hotels"); err != nil {
		t.Fatalf("matching role: %v", err)
	}

	err := RequireRole(guest, types.RoleProvider, "manage hotels")
	var uaErr *UnauthorizedError
	if !errors.As(err, &uaErr) {
		t.Fatalf("expected UnauthorizedError, got %v", err)
	}
	if uaErr.Error() != "you are not authorized to manage hotels" {
		t.Fatalf("unexpected message: %q", uaErr.Error())
	}
}

func TestRequireOwnership(t *testing.T) {
	owner := types.User{ID: 1}
	stranger := types.User{ID: 2}

	if err := RequireOwnership(owner, 1, "update this hotel"); err != nil {
		t.Fatalf("owner: %v", err)
	}

	var uaErr *UnauthorizedError
	if err := RequireOwnership(stranger, 1, "update this hotel"); !errors.As(err, &uaErr) {
		t.Fatalf("expected UnauthorizedError, got %v", err)
	}
}

func TestValidationErrorAggregation(t *testing.T) {
	err := newValidationError(
		FieldViolation{Field: "name", Message: "hotel name is required"},
		FieldViolation{Field: "location", Message: "hotel location is required"},
	)
	if err.Error() != "hotel name is required; hotel location is required" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
