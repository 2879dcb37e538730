package services

import (
	"context"
	"errors"
	"testing"

	"github.com/staybook/apiserver/types"
)

func newUserService(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return NewUserService(repo, plainHasher{}), repo
}

func guestInput(username, email string) RegisterInput {
	return RegisterInput{
		Username: username,
		Email:    email,
		Password: "secret123",
		Role:     types.RoleUser,
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, guestInput(" alice ", " alice@example.com "))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Fatalf("username and email should be trimmed: %+v", user)
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}
	if !svc.CheckPassword(user, "secret123") {
		t.Fatalf("stored hash should verify the original password")
	}
	if svc.CheckPassword(user, "wrong") {
		t.Fatalf("wrong password should not verify")
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, guestInput("alice", "alice@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}

	var vErr *ValidationError
	_, err := svc.Register(ctx, guestInput("alice", "other@example.com"))
	if !errors.As(err, &vErr) {
		t.Fatalf("duplicate username: expected ValidationError, got %v", err)
	}
	if vErr.Violations[0].Message != "username already exists" {
		t.Fatalf("unexpected message: %q", vErr.Violations[0].Message)
	}

	_, err = svc.Register(ctx, guestInput("bob", "alice@example.com"))
	if !errors.As(err, &vErr) {
		t.Fatalf("duplicate email: expected ValidationError, got %v", err)
	}
	if vErr.Violations[0].Message != "email already exists" {
		t.Fatalf("unexpected message: %q", vErr.Violations[0].Message)
	}
}

func TestRegisterProviderProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	in := RegisterInput{
		Username: "host",
		Email:    "host@example.com",
		Password: "secret123",
		Role:     types.RoleProvider,
	}
	var vErr *ValidationError
	if _, err := svc.Register(ctx, in); !errors.As(err, &vErr) {
		t.Fatalf("provider without profile: expected ValidationError, got %v", err)
	}

	in.FullName = "Harriet Host"
	in.BusinessName = "Seaside Inn Ltd"
	in.ContactNumber = "+351 900 000 000"
	user, err := svc.Register(ctx, in)
	if err != nil {
		t.Fatalf("register provider: %v", err)
	}
	if !user.IsProvider() {
		t.Fatalf("expected provider role, got %q", user.Role)
	}
}

func TestListProviders(t *testing.T) {
	svc, repo := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, guestInput("alice", "alice@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := repo.Create(ctx, types.User{Username: "host", Email: "host@example.com", Role: types.RoleProvider}); err != nil {
		t.Fatalf("seed provider: %v", err)
	}

	providers, err := svc.ListProviders(ctx)
	if err != nil {
		t.Fatalf("list providers: %v", err)
	}
	if len(providers) != 1 || providers[0].Username != "host" {
		t.Fatalf("expected only provider accounts, got %+v", providers)
	}
}
