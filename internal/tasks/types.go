package tasks

import "time"

// Task Types
const (
	// TaskTypeReportComplete finishes a report job once its delay has elapsed.
	TaskTypeReportComplete = "report:complete"
)

// Task Queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default" // report completion
	QueueLow      = "low"
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
)

// ReportCompletePayload identifies the job to complete.
type ReportCompletePayload struct {
	JobID string `json:"job_id"`
}
