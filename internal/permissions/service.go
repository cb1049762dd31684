package permissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

// RepositoryPort defines data access methods for permissions.
type RepositoryPort interface {
	List(ctx context.Context) ([]Permission, error)
	Get(ctx context.Context, id string) (Permission, error)
	Create(ctx context.Context, p Permission) error
	Update(ctx context.Context, p Permission) (Permission, error)
	Delete(ctx context.Context, id string) (Permission, error)
	FindByNames(ctx context.Context, names []string) ([]Permission, error)
	FindByIDs(ctx context.Context, ids []string) ([]Permission, error)
}

// AuditRecorder appends an audit entry after a successful mutation.
type AuditRecorder interface {
	Record(ctx context.Context, description string)
}

// Input carries the caller-supplied permission fields.
type Input struct {
	Name        string
	Actions     []string
	Description string
}

// Service handles permission business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

// List returns all permissions.
func (s *Service) List(ctx context.Context) ([]Permission, error) {
	return s.repo.List(ctx)
}

// Get fetches a permission by ID.
func (s *Service) Get(ctx context.Context, id string) (Permission, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new permission and records the mutation.
func (s *Service) Create(ctx context.Context, input Input) (Permission, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Permission{}, fmt.Errorf("permission name required: %w", httpx.ErrValidation)
	}
	p := Permission{
		ID:          uuid.NewString(),
		Name:        name,
		Actions:     normalizeActions(input.Actions),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Permission{}, err
	}
	s.audit.Record(ctx, "New Permission created")
	return p, nil
}

// Update replaces the mutable fields of an existing permission.
func (s *Service) Update(ctx context.Context, id string, input Input) (Permission, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Permission{}, fmt.Errorf("permission name required: %w", httpx.ErrValidation)
	}
	updated, err := s.repo.Update(ctx, Permission{
		ID:          id,
		Name:        name,
		Actions:     normalizeActions(input.Actions),
		Description: strings.TrimSpace(input.Description),
	})
	if err != nil {
		return Permission{}, err
	}
	s.audit.Record(ctx, "Permission Updated")
	return updated, nil
}

// Delete removes a permission by ID and returns the deleted record.
// Deletion is unconditional: referencing roles are never checked or updated.
func (s *Service) Delete(ctx context.Context, id string) (Permission, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	s.audit.Record(ctx, "Permission Deleted")
	return deleted, nil
}

func normalizeActions(actions []string) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, strings.ToLower(strings.TrimSpace(a)))
	}
	return out
}
