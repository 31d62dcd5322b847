package models

import "time"

type Dashboard struct {
	KPIs   KPIs   `json:"kpis"`
	Charts Charts `json:"charts"`
}

type KPIs struct {
	TotalTenants    int    `json:"totalTenants"`
	TenantsTrend    string `json:"tenantsTrend"`
	ActiveUsers     int    `json:"activeUsers"`
	UsersTrend      string `json:"usersTrend"`
	TotalLoans      int    `json:"totalLoans"`
	LoansTrend      string `json:"loansTrend"`
	DisbursedAmount string `json:"disbursedAmount"`
	AmountTrend     string `json:"amountTrend"`
}

type Charts struct {
	MonthlyDisbursement    []MonthlyAmount `json:"monthlyDisbursement"`
	LoanStatusDistribution []StatusCount   `json:"loanStatusDistribution"`
	RecentActivity         []Activity      `json:"recentActivity"`
}

type MonthlyAmount struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Activity struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Time     string `json:"time"`
}

type Profile struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type SignupRequest struct {
	Email            string `json:"email" validate:"required,email"`
	BusinessName     string `json:"business_name" validate:"required"`
	SubscriptionType string `json:"subscription_type"`
	Status           string `json:"status"`
}

// TenantApplication is a signup waiting for onboarding review.
type TenantApplication struct {
	ApplicationID string        `json:"application_id"`
	Request       SignupRequest `json:"request"`
	SubmittedAt   time.Time     `json:"submitted_at"`
}
