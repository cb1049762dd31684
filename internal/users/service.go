package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
	"github.com/accessdeck/accessdeck/internal/roles"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) (User, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// RoleFinder resolves role references for users.
type RoleFinder interface {
	Get(ctx context.Context, id string) (roles.Role, error)
}

// AuditRecorder appends an audit entry after a successful mutation.
type AuditRecorder interface {
	Record(ctx context.Context, description string)
}

// CreateInput carries the fields for a new user.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	RoleID   string
	Status   string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	RoleID   *string
	Status   *string
}

// Service handles user business logic.
type Service struct {
	repo  RepositoryPort
	roles RoleFinder
	audit AuditRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roleFinder RoleFinder, audit AuditRecorder) *Service {
	return &Service{repo: repo, roles: roleFinder, audit: audit}
}

// List returns all users with their role expanded.
func (s *Service) List(ctx context.Context) ([]ExpandedUser, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	expanded := make([]ExpandedUser, len(list))
	for i, u := range list {
		expanded[i], err = s.populate(ctx, u)
		if err != nil {
			return nil, err
		}
	}
	return expanded, nil
}

// Get fetches a user by ID with its role expanded.
func (s *Service) Get(ctx context.Context, id string) (ExpandedUser, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return ExpandedUser{}, err
	}
	return s.populate(ctx, u)
}

// Create stores a new user. The role reference is taken as-is: it is not
// validated against the roles collection.
func (s *Service) Create(ctx context.Context, input CreateInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if name == "" || email == "" {
		return User{}, fmt.Errorf("user name and email required: %w", httpx.ErrValidation)
	}
	u := User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		RoleID:    strings.TrimSpace(input.RoleID),
		Status:    input.Status,
		CreatedAt: time.Now().UTC(),
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = string(hash)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	s.audit.Record(ctx, "New User created")
	return u, nil
}

// Update applies a partial update to an existing user.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if input.Name != nil {
		u.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		u.Email = strings.TrimSpace(strings.ToLower(*input.Email))
	}
	if input.RoleID != nil {
		u.RoleID = strings.TrimSpace(*input.RoleID)
	}
	if input.Status != nil {
		u.Status = *input.Status
	}
	if u.Name == "" || u.Email == "" {
		return User{}, fmt.Errorf("user name and email required: %w", httpx.ErrValidation)
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = string(hash)
	}
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, err
	}
	s.audit.Record(ctx, "User updated")
	return updated, nil
}

// Delete removes a user by ID and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id string) (User, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return User{}, err
	}
	s.audit.Record(ctx, "User deleted")
	return deleted, nil
}

// CountUsersReferencing counts users referencing the given role. This is a
// display figure, never a deletion guard.
func (s *Service) CountUsersReferencing(ctx context.Context, roleID string) (int64, error) {
	return s.repo.CountByRole(ctx, roleID)
}

// CountActive counts users whose status is Active.
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, StatusActive)
}

// populate expands the user's role reference. A role that no longer resolves
// yields a nil Role; any other lookup failure propagates so an outage is not
// mistaken for a dangling reference.
func (s *Service) populate(ctx context.Context, u User) (ExpandedUser, error) {
	expanded := ExpandedUser{User: u}
	if u.RoleID == "" {
		return expanded, nil
	}
	role, err := s.roles.Get(ctx, u.RoleID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return expanded, nil
		}
		return ExpandedUser{}, err
	}
	expanded.Role = &role
	return expanded, nil
}
