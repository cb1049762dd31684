package permissions

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

type memoryPermissionRepo struct {
	perms map[string]Permission
	order []string
}

func newMemoryPermissionRepo() *memoryPermissionRepo {
	return &memoryPermissionRepo{perms: make(map[string]Permission)}
}

func (r *memoryPermissionRepo) List(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.perms[id])
	}
	return out, nil
}

func (r *memoryPermissionRepo) Get(ctx context.Context, id string) (Permission, error) {
	p, ok := r.perms[id]
	if !ok {
		return Permission{}, fmt.Errorf("permission %s: %w", id, httpx.ErrNotFound)
	}
	return p, nil
}

func (r *memoryPermissionRepo) Create(ctx context.Context, p Permission) error {
	r.perms[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memoryPermissionRepo) Update(ctx context.Context, p Permission) (Permission, error) {
	existing, ok := r.perms[p.ID]
	if !ok {
		return Permission{}, fmt.Errorf("permission %s: %w", p.ID, httpx.ErrNotFound)
	}
	existing.Name = p.Name
	existing.Actions = p.Actions
	existing.Description = p.Description
	r.perms[p.ID] = existing
	return existing, nil
}

func (r *memoryPermissionRepo) Delete(ctx context.Context, id string) (Permission, error) {
	p, ok := r.perms[id]
	if !ok {
		return Permission{}, fmt.Errorf("permission %s: %w", id, httpx.ErrNotFound)
	}
	delete(r.perms, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (r *memoryPermissionRepo) FindByNames(ctx context.Context, names []string) ([]Permission, error) {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out []Permission
	for _, id := range r.order {
		if _, ok := want[r.perms[id].Name]; ok {
			out = append(out, r.perms[id])
		}
	}
	return out, nil
}

func (r *memoryPermissionRepo) FindByIDs(ctx context.Context, ids []string) ([]Permission, error) {
	var out []Permission
	for _, id := range ids {
		if p, ok := r.perms[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type recordingAudit struct {
	entries []string
}

func (a *recordingAudit) Record(ctx context.Context, description string) {
	a.entries = append(a.entries, description)
}

func TestCreatePermissionRecordsActivity(t *testing.T) {
	audit := &recordingAudit{}
	svc := NewService(newMemoryPermissionRepo(), audit)

	p, err := svc.Create(context.Background(), Input{Name: " Read ", Actions: []string{"READ", "create"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected generated id")
	}
	if p.Name != "Read" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if len(p.Actions) != 2 || p.Actions[0] != "read" || p.Actions[1] != "create" {
		t.Fatalf("expected normalized actions, got %v", p.Actions)
	}
	if len(audit.entries) != 1 || audit.entries[0] != "New Permission created" {
		t.Fatalf("expected create audit entry, got %v", audit.entries)
	}
}

func TestCreatePermissionRequiresName(t *testing.T) {
	audit := &recordingAudit{}
	svc := NewService(newMemoryPermissionRepo(), audit)

	_, err := svc.Create(context.Background(), Input{Name: ""})
	if !errors.Is(err, httpx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("validation failure must not record an audit entry")
	}
}

func TestUpdateAndDeletePermission(t *testing.T) {
	audit := &recordingAudit{}
	svc := NewService(newMemoryPermissionRepo(), audit)
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: "Read", Actions: []string{"read"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, p.ID, Input{Name: "Read All", Actions: []string{"read"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Read All" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}

	deleted, err := svc.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != p.ID {
		t.Fatalf("expected deleted record returned")
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	want := []string{"New Permission created", "Permission Updated", "Permission Deleted"}
	if len(audit.entries) != len(want) {
		t.Fatalf("expected %d audit entries, got %v", len(want), audit.entries)
	}
	for i, desc := range want {
		if audit.entries[i] != desc {
			t.Fatalf("audit entry %d: expected %q, got %q", i, desc, audit.entries[i])
		}
	}
}

func TestUpdateMissingPermission(t *testing.T) {
	audit := &recordingAudit{}
	svc := NewService(newMemoryPermissionRepo(), audit)

	_, err := svc.Update(context.Background(), "nope", Input{Name: "Read"})
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("failed update must not record an audit entry")
	}
}
