// Package status tracks a process-wide liveness signal.
package status

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Snapshot is the externally visible liveness state. Status is fixed at
// "Active": a process that can answer at all is active, and the inactive
// state only ever exists for callers that fail to reach the process.
type Snapshot struct {
	Status            string    `json:"status"`
	LastConnectedTime time.Time `json:"lastConnectedTime"`
}

// Reporter records the last time a request was observed. Touches race freely:
// the timestamp tolerates unordered overwrites, so a plain atomic word is all
// the synchronization needed.
type Reporter struct {
	lastSeen atomic.Int64
	now      func() time.Time
}

// NewReporter constructs a Reporter primed with the current time.
func NewReporter() *Reporter {
	r := &Reporter{now: time.Now}
	r.Touch()
	return r
}

// Touch overwrites the last-seen timestamp with the current time.
func (r *Reporter) Touch() {
	r.lastSeen.Store(r.now().UnixNano())
}

// Snapshot returns the current liveness state.
func (r *Reporter) Snapshot() Snapshot {
	return Snapshot{
		Status:            "Active",
		LastConnectedTime: time.Unix(0, r.lastSeen.Load()).UTC(),
	}
}

// Middleware touches the reporter on every request passing through it.
func (r *Reporter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Touch()
		next.ServeHTTP(w, req)
	})
}
