package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIntegrityScan is the task type for the dangling-reference scan.
	TaskIntegrityScan = "integrity:scan"
)

// IntegrityScanPayload configures a dangling-reference scan run.
type IntegrityScanPayload struct {
	// ReportLimit caps how many offending rows are named in the log output.
	ReportLimit int `json:"report_limit"`
}

// NewIntegrityScanTask constructs an Asynq task.
func NewIntegrityScanTask(payload IntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIntegrityScan, data), nil
}
