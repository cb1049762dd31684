package roles

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

const roleColumns = `id, name, COALESCE(description, ''), permission_ids, created_at`

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.PermissionIDs, &role.CreatedAt); err != nil {
		return Role{}, err
	}
	return role, nil
}

// List returns all roles ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// Get fetches a role by ID.
func (r *Repository) Get(ctx context.Context, id string) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("role %s: %w", id, httpx.ErrNotFound)
		}
		return Role{}, err
	}
	return role, nil
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, role Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (id, name, description, permission_ids, created_at) VALUES ($1, $2, $3, $4, $5)`,
		role.ID, role.Name, role.Description, role.PermissionIDs, role.CreatedAt)
	return err
}

// Update replaces name, description and permission references of a role.
func (r *Repository) Update(ctx context.Context, role Role) (Role, error) {
	updated, err := scanRole(r.pool.QueryRow(ctx,
		`UPDATE roles SET name = $2, description = $3, permission_ids = $4 WHERE id = $1
		 RETURNING `+roleColumns, role.ID, role.Name, role.Description, role.PermissionIDs))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("role %s: %w", role.ID, httpx.ErrNotFound)
		}
		return Role{}, err
	}
	return updated, nil
}

// Delete removes a role and returns the deleted row. Users referencing the
// role keep their role_id; the reference simply stops resolving.
func (r *Repository) Delete(ctx context.Context, id string) (Role, error) {
	deleted, err := scanRole(r.pool.QueryRow(ctx,
		`DELETE FROM roles WHERE id = $1 RETURNING `+roleColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("role %s: %w", id, httpx.ErrNotFound)
		}
		return Role{}, err
	}
	return deleted, nil
}

// CountByPermission counts roles whose permission_ids contain permissionID.
// The count is computed against roles only, so it stays answerable after the
// permission itself has been deleted.
func (r *Repository) CountByPermission(ctx context.Context, permissionID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM roles WHERE $1 = ANY(permission_ids)`, permissionID).Scan(&count)
	return count, err
}
