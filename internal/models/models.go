package models

import "time"

type Tenant struct {
	TenantID         string `json:"tenant_id"`
	CompanyName      string `json:"company_name" validate:"required,min=2"`
	Email            string `json:"email" validate:"required,email"`
	PhoneNumber      string `json:"phone_number"`
	UserCount        int    `json:"user_count"`
	Status           string `json:"status" validate:"omitempty,oneof=Active Inactive"`
	CreatedAt        Date   `json:"created_at"`
	SubscriptionPlan string `json:"subscription_plan"`
	TotalLoans       int    `json:"total_loans"`
	TotalActiveUsers int    `json:"total_active_users"`
}

type Branch struct {
	BranchID   string `json:"branch_id"`
	TenantID   string `json:"tenant_id" validate:"required"`
	BranchName string `json:"branch_name" validate:"required"`
	BranchCode string `json:"branch_code"`
	City       string `json:"city"`
	Status     string `json:"status"`
	CreatedAt  Date   `json:"created_at"`
}

type User struct {
	UserID      string     `json:"user_id"`
	TenantID    string     `json:"tenant_id"`
	Name        string     `json:"name" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	PhoneNumber string     `json:"phone_number"`
	RoleID      string     `json:"role_id"`
	RoleName    string     `json:"role_name"`
	Status      string     `json:"status"`
	LastLogin   *time.Time `json:"last_login"`
}

type Role struct {
	RoleID       string `json:"role_id"`
	RoleName     string `json:"role_name" validate:"required"`
	Description  string `json:"description"`
	IsSystemRole bool   `json:"is_system_role"`
}

type Permission struct {
	PermissionID string `json:"permission_id"`
	Module       string `json:"module"`
	Action       string `json:"action"`
	Name         string `json:"name"`
}

type LoanProduct struct {
	ProductID    string `json:"product_id"`
	BusinessName string `json:"business_name"`
	TypeOfLoan   string `json:"type_of_loan" validate:"required"`
	Subcategory  string `json:"subcategory"`
	Status       string `json:"status"`
}

type LoanApplication struct {
	LoanID        string    `json:"loan_id"`
	TenantID      string    `json:"tenant_id"`
	ApplicantName string    `json:"applicant_name" validate:"required"`
	Amount        float64   `json:"amount" validate:"gt=0"`
	TermMonths    int       `json:"term_months"`
	AppliedOn     time.Time `json:"applied_on"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
}

// LoanAction is an approval-workflow step requested from the console.
type LoanAction struct {
	Action string `json:"action" validate:"required,oneof=Approve Reject Disburse"`
	Reason string `json:"reason,omitempty"`
}

// Loan actions accepted by LoanAction.Action.
const (
	ActionApprove  = "Approve"
	ActionReject   = "Reject"
	ActionDisburse = "Disburse"
)

// StatusFor maps an action to the status it sets. ok is false for unknown actions.
func (a LoanAction) StatusFor() (status string, ok bool) {
	switch a.Action {
	case ActionApprove:
		return LoanApproved, true
	case ActionReject:
		return LoanRejected, true
	case ActionDisburse:
		return LoanDisbursed, true
	}
	return "", false
}

type LogEntry struct {
	LogID          string                 `json:"log_id"`
	TenantID       *string                `json:"tenant_id"`
	Timestamp      time.Time              `json:"timestamp"`
	EventType      string                 `json:"event_type"`
	ActorUserID    string                 `json:"actor_user_id"`
	ActorUserRole  string                 `json:"actor_user_role"`
	TargetEntity   string                 `json:"target_entity"`
	TargetEntityID string                 `json:"target_entity_id"`
	Summary        string                 `json:"summary"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

type Notification struct {
	NotificationID string    `json:"notification_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
}

type Setting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	DataType    string `json:"data_type"`
	IsEncrypted bool   `json:"is_encrypted"`
	Group       string `json:"group"`
}

// SettingGroups is the settings page layout: loan, system and notify.
type SettingGroups struct {
	Loan   []Setting `json:"loan"`
	System []Setting `json:"system"`
	Notify []Setting `json:"notify"`
}

type IntegrationConfig struct {
	ConfigID        string     `json:"config_id"`
	IntegrationType string     `json:"integration_type" validate:"required"`
	TenantID        *string    `json:"tenant_id"`
	ProviderName    string     `json:"provider_name" validate:"required"`
	APIKeyEncrypted string     `json:"api_key_encrypted"`
	EndpointURL     string     `json:"endpoint_url" validate:"omitempty,url"`
	Status          string     `json:"status"`
	LastValidated   *time.Time `json:"last_validated"`
}
