package activity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for activities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends an activity entry.
func (r *Repository) Insert(ctx context.Context, entry Activity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activities (id, description, occurred_at) VALUES ($1, $2, $3)`,
		entry.ID, entry.Description, entry.OccurredAt)
	return err
}

// Latest returns the most recent entries, newest first.
func (r *Repository) Latest(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, description, occurred_at FROM activities ORDER BY occurred_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Activity
	for rows.Next() {
		var entry Activity
		if err := rows.Scan(&entry.ID, &entry.Description, &entry.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
