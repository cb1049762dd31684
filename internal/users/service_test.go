package users

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
	"github.com/accessdeck/accessdeck/internal/roles"
)

type memoryUserRepo struct {
	users map[string]User
	order []string
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]User)}
}

func (r *memoryUserRepo) List(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}

func (r *memoryUserRepo) Get(ctx context.Context, id string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", id, httpx.ErrNotFound)
	}
	return u, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, u User) error {
	r.users[u.ID] = u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *memoryUserRepo) Update(ctx context.Context, u User) (User, error) {
	if _, ok := r.users[u.ID]; !ok {
		return User{}, fmt.Errorf("user %s: %w", u.ID, httpx.ErrNotFound)
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id string) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", id, httpx.ErrNotFound)
	}
	delete(r.users, id)
	for i, uid := range r.order {
		if uid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return u, nil
}

func (r *memoryUserRepo) CountByRole(ctx context.Context, roleID string) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.RoleID == roleID {
			count++
		}
	}
	return count, nil
}

func (r *memoryUserRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	for _, u := range r.users {
		if u.Status == status {
			count++
		}
	}
	return count, nil
}

type memoryRoleFinder struct {
	roles map[string]roles.Role
}

func (f *memoryRoleFinder) Get(ctx context.Context, id string) (roles.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return roles.Role{}, fmt.Errorf("role %s: %w", id, httpx.ErrNotFound)
	}
	return role, nil
}

type recordingAudit struct {
	entries []string
}

func (a *recordingAudit) Record(ctx context.Context, description string) {
	a.entries = append(a.entries, description)
}

func newTestService() (*Service, *memoryUserRepo, *memoryRoleFinder, *recordingAudit) {
	repo := newMemoryUserRepo()
	finder := &memoryRoleFinder{roles: map[string]roles.Role{
		"viewer": {ID: "viewer", Name: "Viewer", CreatedAt: time.Now()},
	}}
	audit := &recordingAudit{}
	return NewService(repo, finder, audit), repo, finder, audit
}

func TestCreateUserHashesPasswordAndDefaultsStatus(t *testing.T) {
	svc, _, _, audit := newTestService()

	u, err := svc.Create(context.Background(), CreateInput{
		Name:     "Alice",
		Email:    "Alice@Example.COM",
		Password: "hunter22",
		RoleID:   "viewer",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if u.Status != StatusActive {
		t.Fatalf("expected default status Active, got %q", u.Status)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(audit.entries) != 1 || audit.entries[0] != "New User created" {
		t.Fatalf("expected create audit entry, got %v", audit.entries)
	}
}

func TestPartialUpdateKeepsUnsetFields(t *testing.T) {
	svc, _, _, audit := newTestService()
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Name: "Alice", Email: "alice@example.com", RoleID: "viewer"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Alice B"
	updated, err := svc.Update(ctx, u.ID, UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Alice B" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Email != "alice@example.com" || updated.RoleID != "viewer" {
		t.Fatalf("unset fields must be preserved, got %+v", updated)
	}
	if audit.entries[len(audit.entries)-1] != "User updated" {
		t.Fatalf("expected update audit entry, got %v", audit.entries)
	}
}

func TestPopulateUserWithDeletedRole(t *testing.T) {
	svc, _, finder, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateInput{Name: "Alice", Email: "alice@example.com", RoleID: "viewer"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	expanded, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if expanded.Role == nil || expanded.Role.Name != "Viewer" {
		t.Fatalf("expected role expanded, got %+v", expanded.Role)
	}

	delete(finder.roles, "viewer")

	expanded, err = svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get after role delete: %v", err)
	}
	if expanded.Role != nil {
		t.Fatalf("expected nil role for dangling reference, got %+v", expanded.Role)
	}
	if expanded.RoleID != "viewer" {
		t.Fatalf("stored reference must survive role deletion, got %q", expanded.RoleID)
	}
}

type failingRoleFinder struct {
	err error
}

func (f *failingRoleFinder) Get(ctx context.Context, id string) (roles.Role, error) {
	return roles.Role{}, f.err
}

func TestPopulateUserSurfacesRoleLookupFailure(t *testing.T) {
	repo := newMemoryUserRepo()
	lookupErr := errors.New("connection refused")
	svc := NewService(repo, &failingRoleFinder{err: lookupErr}, &recordingAudit{})
	ctx := context.Background()

	repo.users["u1"] = User{ID: "u1", Name: "Alice", Email: "alice@example.com", RoleID: "viewer"}
	repo.order = append(repo.order, "u1")

	// An outage during expansion must not be rendered as a dangling reference.
	if _, err := svc.Get(ctx, "u1"); !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error to propagate, got %v", err)
	}
	if _, err := svc.List(ctx); !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error to propagate from list, got %v", err)
	}
}

func TestCountUsersReferencingSurvivesRoleDeletion(t *testing.T) {
	svc, _, finder, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "Alice", Email: "alice@example.com", RoleID: "viewer"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := svc.CountUsersReferencing(ctx, "viewer")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Deleting the role never decrements the stored references.
	delete(finder.roles, "viewer")

	count, err = svc.CountUsersReferencing(ctx, "viewer")
	if err != nil {
		t.Fatalf("count after role delete: %v", err)
	}
	if count != 1 {
		t.Fatalf("count must not decrement when the role is deleted, got %d", count)
	}
}

func TestCountActiveUsers(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@example.com", Status: StatusActive}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "B", Email: "b@example.com", Status: StatusInactive}); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := svc.CountActive(ctx)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 active user, got %d", count)
	}
}

func TestDeleteMissingUser(t *testing.T) {
	svc, _, _, audit := newTestService()

	_, err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("failed delete must not record an audit entry")
	}
}
