package models

import "time"

// Status values shared by tenants, users, branches and products.
const (
	StatusActive            = "Active"
	StatusInactive          = "Inactive"
	StatusPendingActivation = "Pending Activation"
)

// Loan application statuses used by the mock backend and the dashboard.
const (
	LoanPending   = "Pending"
	LoanApproved  = "Approved"
	LoanRejected  = "Rejected"
	LoanDisbursed = "Disbursed"
	LoanRepaid    = "Repaid"
)

// Integration connection statuses.
const (
	IntegrationPending      = "Pending"
	IntegrationConnected    = "Connected"
	IntegrationDisconnected = "Disconnected"
)

// Lead statuses.
const (
	LeadNew       = "NEW"
	LeadContacted = "CONTACTED"
	LeadConverted = "CONVERTED"
)

// SuperAdminRole is redacted from role listings shown to the console.
const SuperAdminRole = "Super Admin"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date string

// Time parses the date; an unparsable value yields the zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse("2006-01-02", string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}
