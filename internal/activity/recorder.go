package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for activities.
type RepositoryPort interface {
	Insert(ctx context.Context, entry Activity) error
	Latest(ctx context.Context, limit int) ([]Activity, error)
}

// Recorder appends audit entries after successful mutations. A failed append
// is logged and swallowed: the primary write and the audit write are
// independent, and an audit failure must never fail the operation that
// triggered it.
type Recorder struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(repo RepositoryPort, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

// Record appends one entry with the given human-readable description.
func (r *Recorder) Record(ctx context.Context, description string) {
	if r == nil || r.repo == nil {
		return
	}
	entry := Activity{
		ID:          uuid.NewString(),
		Description: description,
		OccurredAt:  r.now().UTC(),
	}
	if err := r.repo.Insert(ctx, entry); err != nil && r.logger != nil {
		r.logger.Warn("record activity", slog.String("description", description), slog.Any("error", err))
	}
}

// Service exposes the read side of the activity log.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Latest returns the newest entries, capped at FeedLimit, newest first.
func (s *Service) Latest(ctx context.Context) ([]Activity, error) {
	return s.repo.Latest(ctx, FeedLimit)
}
