package models

import "time"

type Lead struct {
	LeadID    string     `json:"lead_id"`
	Name      string     `json:"name" validate:"required"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Source    string     `json:"source"`
	Status    string     `json:"status" validate:"omitempty,lead_status"`
	Calls     []CallNote `json:"calls,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type CallNote struct {
	Notes    string    `json:"notes"`
	LoggedAt time.Time `json:"logged_at"`
}

// OverdueAccount is a loan in the collections queue.
type OverdueAccount struct {
	LoanID        string     `json:"loan_id"`
	TenantID      string     `json:"tenant_id"`
	BorrowerName  string     `json:"borrower_name"`
	OverdueAmount float64    `json:"overdue_amount"`
	DaysPastDue   int        `json:"dpd"`
	Bucket        string     `json:"bucket"`
	Notices       []string   `json:"notices,omitempty"`
	Remarks       []CallNote `json:"remarks,omitempty"`
	LastContacted *time.Time `json:"last_contacted"`
}

type CollectionStats struct {
	TotalOverdue   float64 `json:"total_overdue"`
	OverdueCount   int     `json:"overdue_count"`
	NPACount       int     `json:"npa_count"`
	ContactedToday int     `json:"contacted_today"`
}
