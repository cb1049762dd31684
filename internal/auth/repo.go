package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/accessdeck/accessdeck/internal/platform/httpx"
)

// Repository defines data access for authentication.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// PGRepository provides PostgreSQL backed credential lookups.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches the account for email with its role name resolved.
// The join is a LEFT JOIN so a dangling role reference yields an empty name
// instead of dropping the row.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.email, COALESCE(u.password_hash, ''), COALESCE(u.role_id, ''), COALESCE(r.name, '')
		 FROM users u LEFT JOIN roles r ON r.id = u.role_id
		 WHERE u.email = $1`, email).
		Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.RoleID, &acc.RoleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, httpx.ErrNotFound)
		}
		return nil, err
	}
	return &acc, nil
}
