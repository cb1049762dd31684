package activity

import "time"

// Activity is a single append-only audit log entry. Entries are never
// updated or deleted once written.
type Activity struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"timestamp"`
}

// FeedLimit bounds the recent-activity feed.
const FeedLimit = 8
