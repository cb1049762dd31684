package roles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/accessdeck/accessdeck/internal/permissions"
	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id string) (Role, error)
	Create(ctx context.Context, role Role) error
	Update(ctx context.Context, role Role) (Role, error)
	Delete(ctx context.Context, id string) (Role, error)
	CountByPermission(ctx context.Context, permissionID string) (int64, error)
}

// PermissionFinder resolves permission references for roles.
type PermissionFinder interface {
	FindByNames(ctx context.Context, names []string) ([]permissions.Permission, error)
	FindByIDs(ctx context.Context, ids []string) ([]permissions.Permission, error)
}

// AuditRecorder appends an audit entry after a successful mutation.
type AuditRecorder interface {
	Record(ctx context.Context, description string)
}

// Input carries the caller-supplied role fields. Permissions holds
// human-readable permission names, not identifiers.
type Input struct {
	Name        string
	Description string
	Permissions []string
}

// Service handles role business logic, including the name-to-id resolution
// and population joins that keep roles consistent with permissions.
type Service struct {
	repo  RepositoryPort
	perms PermissionFinder
	audit AuditRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, perms PermissionFinder, audit AuditRecorder) *Service {
	return &Service{repo: repo, perms: perms, audit: audit}
}

// ResolvePermissionNames maps permission names to identifiers. Resolution is
// a filter, not a validator: names with no exact match are dropped without
// error, and the result follows the input order. When several permissions
// share a name, the oldest one wins.
func (s *Service) ResolvePermissionNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	matched, err := s.perms.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(matched))
	for _, p := range matched {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p.ID
		}
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// List returns all roles with their permissions expanded.
func (s *Service) List(ctx context.Context) ([]ExpandedRole, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.populateAll(ctx, roles)
}

// Get fetches a role by ID with its permissions expanded.
func (s *Service) Get(ctx context.Context, id string) (ExpandedRole, error) {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return ExpandedRole{}, err
	}
	return s.populate(ctx, role)
}

// Create resolves the submitted permission names, stores the role and records
// the mutation.
func (s *Service) Create(ctx context.Context, input Input) (Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Role{}, fmt.Errorf("role name required: %w", httpx.ErrValidation)
	}
	ids, err := s.ResolvePermissionNames(ctx, input.Permissions)
	if err != nil {
		return Role{}, err
	}
	role := Role{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		PermissionIDs: ids,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return Role{}, err
	}
	s.audit.Record(ctx, "New Role created")
	return role, nil
}

// Update re-resolves the submitted permission names and replaces the stored
// references.
func (s *Service) Update(ctx context.Context, id string, input Input) (Role, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Role{}, fmt.Errorf("role name required: %w", httpx.ErrValidation)
	}
	ids, err := s.ResolvePermissionNames(ctx, input.Permissions)
	if err != nil {
		return Role{}, err
	}
	updated, err := s.repo.Update(ctx, Role{
		ID:            id,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		PermissionIDs: ids,
	})
	if err != nil {
		return Role{}, err
	}
	s.audit.Record(ctx, "Role Updated")
	return updated, nil
}

// Delete removes a role by ID and returns the deleted record. Referencing
// users are never checked or updated.
func (s *Service) Delete(ctx context.Context, id string) (Role, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Role{}, err
	}
	s.audit.Record(ctx, "Role Deleted")
	return deleted, nil
}

// CountRolesReferencing counts roles referencing the given permission. This
// is a display figure, never a deletion guard.
func (s *Service) CountRolesReferencing(ctx context.Context, permissionID string) (int64, error) {
	return s.repo.CountByPermission(ctx, permissionID)
}

// populate expands a role's permission ids through an explicit join: fetch
// the referenced permissions by id list, then merge preserving the stored
// order. Dangling ids are silently omitted.
func (s *Service) populate(ctx context.Context, role Role) (ExpandedRole, error) {
	expanded, err := s.populateAll(ctx, []Role{role})
	if err != nil {
		return ExpandedRole{}, err
	}
	return expanded[0], nil
}

func (s *Service) populateAll(ctx context.Context, roles []Role) ([]ExpandedRole, error) {
	idSet := make(map[string]struct{})
	var ids []string
	for _, role := range roles {
		for _, id := range role.PermissionIDs {
			if _, ok := idSet[id]; !ok {
				idSet[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	byID := make(map[string]permissions.Permission, len(ids))
	if len(ids) > 0 {
		found, err := s.perms.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			byID[p.ID] = p
		}
	}

	expanded := make([]ExpandedRole, len(roles))
	for i, role := range roles {
		perms := make([]permissions.Permission, 0, len(role.PermissionIDs))
		for _, id := range role.PermissionIDs {
			if p, ok := byID[id]; ok {
				perms = append(perms, p)
			}
		}
		expanded[i] = ExpandedRole{Role: role, Permissions: perms}
	}
	return expanded, nil
}
