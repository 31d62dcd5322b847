package models

import "time"

// Report types accepted by the report job manager.
const (
	ReportLoanActivity  = "LOAN_ACTIVITY"
	ReportTenantSummary = "TENANT_SUMMARY"
	ReportUserActivity  = "USER_ACTIVITY"
)

// Report job phases. Jobs only move forward.
const (
	JobProcessing = "PROCESSING"
	JobCompleted  = "COMPLETED"
)

type ReportRequest struct {
	ReportType string `json:"report_type" validate:"required,oneof=LOAN_ACTIVITY TENANT_SUMMARY USER_ACTIVITY"`
	DateFrom   Date   `json:"date_from,omitempty"`
	DateTo     Date   `json:"date_to,omitempty"`
	TenantID   string `json:"tenant_id,omitempty"`
}

// ReportJob is the generate() acknowledgement.
type ReportJob struct {
	JobID                   string    `json:"job_id"`
	Status                  string    `json:"status"`
	EstimatedCompletionTime time.Time `json:"estimated_completion_time"`
}
