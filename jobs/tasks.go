package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan scans obligations past their due date.
	TaskOverdueScan = "obligations:overdue_scan"
	// TaskReportWarmup precomputes the common reports after a cache bump.
	TaskReportWarmup = "reports:warmup"
)

// OverdueScanPayload scopes the obligation scan.
type OverdueScanPayload struct {
	Kind string `json:"kind,omitempty"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// ReportWarmupPayload names the period to precompute.
type ReportWarmupPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
