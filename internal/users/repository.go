package users

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

const userColumns = `id, name, email, COALESCE(password_hash, ''), COALESCE(role_id, ''), status, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.Status, &u.CreatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

// List returns all users ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a user by ID.
func (r *Repository) Get(ctx context.Context, id string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user %s: %w", id, httpx.ErrNotFound)
		}
		return User{}, err
	}
	return u, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, u User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.RoleID, u.Status, u.CreatedAt)
	return err
}

// Update replaces the mutable fields of an existing user.
func (r *Repository) Update(ctx context.Context, u User) (User, error) {
	updated, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET name = $2, email = $3, password_hash = $4, role_id = $5, status = $6
		 WHERE id = $1 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash, u.RoleID, u.Status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user %s: %w", u.ID, httpx.ErrNotFound)
		}
		return User{}, err
	}
	return updated, nil
}

// Delete removes a user and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id string) (User, error) {
	deleted, err := scanUser(r.pool.QueryRow(ctx,
		`DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user %s: %w", id, httpx.ErrNotFound)
		}
		return User{}, err
	}
	return deleted, nil
}

// CountByRole counts users whose role_id equals roleID. The count is computed
// against users only, so it stays answerable after the role has been deleted.
func (r *Repository) CountByRole(ctx context.Context, roleID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role_id = $1`, roleID).Scan(&count)
	return count, err
}

// CountByStatus counts users with the given status.
func (r *Repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE status = $1`, status).Scan(&count)
	return count, err
}
