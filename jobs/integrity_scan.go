package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IntegrityScanJob reports dangling references left behind by the permissive
// delete semantics: roles keeping ids of deleted permissions, and users
// keeping the id of a deleted role. The scan only reports; it never repairs,
// because non-cascading deletes are intended behavior.
type IntegrityScanJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewIntegrityScanJob constructs the job.
func NewIntegrityScanJob(pool *pgxpool.Pool, logger *slog.Logger) *IntegrityScanJob {
	return &IntegrityScanJob{pool: pool, logger: logger}
}

// Handle processes TaskIntegrityScan tasks.
func (j *IntegrityScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IntegrityScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ReportLimit <= 0 {
		payload.ReportLimit = 20
	}

	danglingRoles, err := j.scanRoles(ctx, payload.ReportLimit)
	if err != nil {
		return err
	}
	danglingUsers, err := j.scanUsers(ctx, payload.ReportLimit)
	if err != nil {
		return err
	}

	if j.logger != nil {
		j.logger.Info("integrity scan finished",
			slog.Int("roles_with_dangling_permissions", len(danglingRoles)),
			slog.Int("users_with_dangling_role", len(danglingUsers)))
		for _, id := range danglingRoles {
			j.logger.Warn("role references deleted permission", slog.String("role_id", id))
		}
		for _, id := range danglingUsers {
			j.logger.Warn("user references deleted role", slog.String("user_id", id))
		}
	}
	return nil
}

func (j *IntegrityScanJob) scanRoles(ctx context.Context, limit int) ([]string, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT r.id FROM roles r
		WHERE EXISTS (
			SELECT 1 FROM unnest(r.permission_ids) AS pid
			WHERE NOT EXISTS (SELECT 1 FROM permissions p WHERE p.id = pid)
		)
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (j *IntegrityScanJob) scanUsers(ctx context.Context, limit int) ([]string, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT u.id FROM users u
		WHERE COALESCE(u.role_id, '') <> ''
		  AND NOT EXISTS (SELECT 1 FROM roles r WHERE r.id = u.role_id)
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectIDs(rows rowScanner) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
