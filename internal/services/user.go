package services

import (
	"context"
	"strings"

	"github.com/staybook/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	ListByRole(ctx context.Context, role string) ([]types.User, error)
}

// PasswordHasher is the credential-hashing collaborator. The service
// only ever sees opaque hashes.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
}

func NewUserService(repo UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Register creates an account. Username and email are globally unique;
// the role is fixed from here on.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := in.Validate(); err != nil {
		return types.User{}, err
	}

	taken, err := s.repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return types.User{}, err
	}
	if taken {
		return types.User{}, newValidationError(FieldViolation{Field: "username", Message: "username already exists"})
	}

	taken, err = s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return types.User{}, err
	}
	if taken {
		return types.User{}, newValidationError(FieldViolation{Field: "email", Message: "email already exists"})
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return types.User{}, err
	}

	return s.repo.Create(ctx, types.User{
		Username:      in.Username,
		Email:         in.Email,
		Role:          in.Role,
		FullName:      strings.TrimSpace(in.FullName),
		BusinessName:  strings.TrimSpace(in.BusinessName),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		PasswordHash:  hash,
	})
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *UserService) CheckPassword(user types.User, password string) bool {
	return s.hasher.Verify(password, user.PasswordHash)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) ListProviders(ctx context.Context) ([]types.User, error) {
	return s.repo.ListByRole(ctx, types.RoleProvider)
}
