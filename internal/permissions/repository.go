package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const permissionColumns = `id, name, actions, COALESCE(description, ''), created_at`

func scanPermission(row pgx.Row) (Permission, error) {
	var p Permission
	if err := row.Scan(&p.ID, &p.Name, &p.Actions, &p.Description, &p.CreatedAt); err != nil {
		return Permission{}, err
	}
	return p, nil
}

// List returns all permissions ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM permissions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// Get fetches a permission by ID.
func (r *Repository) Get(ctx context.Context, id string) (Permission, error) {
	p, err := scanPermission(r.pool.QueryRow(ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, fmt.Errorf("permission %s: %w", id, httpx.ErrNotFound)
		}
		return Permission{}, err
	}
	return p, nil
}

// Create inserts a new permission.
func (r *Repository) Create(ctx context.Context, p Permission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO permissions (id, name, actions, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Actions, p.Description, p.CreatedAt)
	return err
}

// Update replaces name, actions and description of an existing permission.
func (r *Repository) Update(ctx context.Context, p Permission) (Permission, error) {
	updated, err := scanPermission(r.pool.QueryRow(ctx,
		`UPDATE permissions SET name = $2, actions = $3, description = $4 WHERE id = $1
		 RETURNING `+permissionColumns, p.ID, p.Name, p.Actions, p.Description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, fmt.Errorf("permission %s: %w", p.ID, httpx.ErrNotFound)
		}
		return Permission{}, err
	}
	return updated, nil
}

// Delete removes a permission and returns the deleted row. Roles referencing
// the permission are left untouched; their ids simply stop resolving.
func (r *Repository) Delete(ctx context.Context, id string) (Permission, error) {
	deleted, err := scanPermission(r.pool.QueryRow(ctx,
		`DELETE FROM permissions WHERE id = $1 RETURNING `+permissionColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Permission{}, fmt.Errorf("permission %s: %w", id, httpx.ErrNotFound)
		}
		return Permission{}, err
	}
	return deleted, nil
}

// FindByNames returns permissions whose name exactly matches any of names.
func (r *Repository) FindByNames(ctx context.Context, names []string) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE name = ANY($1) ORDER BY created_at`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// FindByIDs returns the permissions that still exist for the given ids.
// Missing ids are silently absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+permissionColumns+` FROM permissions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}
