package mock

import (
	"time"

	"losadmin/internal/models"
)

const day = 24 * time.Hour

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func seedTenants() []models.Tenant {
	return []models.Tenant{
		{TenantID: "tenant-001", CompanyName: "Metro Credit", Email: "contact@metrocredit.com", PhoneNumber: "+911234567890", UserCount: 43, Status: models.StatusActive, CreatedAt: "2024-01-10", SubscriptionPlan: "Premium", TotalLoans: 120, TotalActiveUsers: 43},
		{TenantID: "tenant-002", CompanyName: "Sunrise Capital", Email: "admin@sunrisecapital.com", PhoneNumber: "+919876543210", UserCount: 32, Status: models.StatusActive, CreatedAt: "2023-11-02", SubscriptionPlan: "Standard", TotalLoans: 95, TotalActiveUsers: 32},
		{TenantID: "tenant-003", CompanyName: "GreenLoans", Email: "ops@greenloans.com", PhoneNumber: "+441234567890", UserCount: 12, Status: models.StatusInactive, CreatedAt: "2022-07-22", SubscriptionPlan: "Standard", TotalLoans: 40, TotalActiveUsers: 12},
	}
}

func seedBranches() []models.Branch {
	return []models.Branch{
		{BranchID: "br-001", TenantID: "tenant-001", BranchName: "Metro Credit Andheri", BranchCode: "MC-AND", City: "Mumbai", Status: models.StatusActive, CreatedAt: "2024-01-15"},
		{BranchID: "br-002", TenantID: "tenant-001", BranchName: "Metro Credit Koramangala", BranchCode: "MC-KOR", City: "Bengaluru", Status: models.StatusActive, CreatedAt: "2024-03-02"},
		{BranchID: "br-003", TenantID: "tenant-002", BranchName: "Sunrise Capital Connaught Place", BranchCode: "SC-CP", City: "New Delhi", Status: models.StatusInactive, CreatedAt: "2023-12-01"},
	}
}

func seedLoans(now time.Time) []models.LoanApplication {
	ago := func(days int) time.Time { return now.Add(-time.Duration(days) * day) }
	return []models.LoanApplication{
		{LoanID: "LN001", TenantID: "tenant-001", ApplicantName: "Amit Sharma", Amount: 500000, TermMonths: 12, AppliedOn: ago(2), Status: models.LoanPending},
		{LoanID: "LN002", TenantID: "tenant-001", ApplicantName: "Neha Verma", Amount: 750000, TermMonths: 18, AppliedOn: ago(3), Status: models.LoanApproved},
		{LoanID: "LN003", TenantID: "tenant-002", ApplicantName: "Rahul Mehta", Amount: 300000, TermMonths: 24, AppliedOn: ago(5), Status: models.LoanRejected},
		{LoanID: "LN004", TenantID: "tenant-001", ApplicantName: "Sara Khan", Amount: 900000, TermMonths: 12, AppliedOn: ago(1), Status: models.LoanPending},
		{LoanID: "LN005", TenantID: "tenant-003", ApplicantName: "Vikram Singh", Amount: 650000, TermMonths: 36, AppliedOn: ago(7), Status: models.LoanDisbursed},
		{LoanID: "LN006", TenantID: "tenant-001", ApplicantName: "Priya Das", Amount: 420000, TermMonths: 18, AppliedOn: ago(4), Status: models.LoanApproved},
		{LoanID: "LN007", TenantID: "tenant-002", ApplicantName: "Mohit Jain", Amount: 1200000, TermMonths: 24, AppliedOn: ago(9), Status: models.LoanPending},
		{LoanID: "LN008", TenantID: "tenant-003", ApplicantName: "Kiran Rao", Amount: 280000, TermMonths: 12, AppliedOn: ago(6), Status: models.LoanRejected},
		{LoanID: "LN009", TenantID: "tenant-001", ApplicantName: "Rohit Gupta", Amount: 830000, TermMonths: 30, AppliedOn: ago(10), Status: models.LoanRepaid},
	}
}

func seedLogs(now time.Time) []models.LogEntry {
	ago := func(hours int) time.Time { return now.Add(-time.Duration(hours) * time.Hour) }
	return []models.LogEntry{
		{LogID: "LG001", TenantID: strPtr("tenant-001"), Timestamp: ago(1), EventType: "LOAN_APPROVED", ActorUserID: "u-101", ActorUserRole: "Manager", TargetEntity: "Loan", TargetEntityID: "LN002", Summary: "Loan Approved", Details: map[string]interface{}{"loan_id": "LN002"}},
		{LogID: "LG002", TenantID: strPtr("tenant-001"), Timestamp: ago(2), EventType: "LOAN_REJECTED", ActorUserID: "u-102", ActorUserRole: "Analyst", TargetEntity: "Loan", TargetEntityID: "LN003", Summary: "Loan Rejected", Details: map[string]interface{}{"reason": "Insufficient docs"}},
		{LogID: "LG003", TenantID: nil, Timestamp: ago(4), EventType: "TENANT_CREATED", ActorUserID: "u-001", ActorUserRole: "Admin", TargetEntity: "Tenant", TargetEntityID: "tenant-003", Summary: "Tenant Added", Details: map[string]interface{}{"name": "Metro Credit"}},
		{LogID: "LG004", TenantID: strPtr("tenant-001"), Timestamp: ago(6), EventType: "USER_ROLE_UPDATED", ActorUserID: "u-103", ActorUserRole: "Admin", TargetEntity: "User", TargetEntityID: "u-205", Summary: "User Role Updated", Details: map[string]interface{}{"old_role": "Analyst", "new_role": "Manager"}},
		{LogID: "LG005", TenantID: strPtr("tenant-001"), Timestamp: ago(8), EventType: "INTEGRATION_VALIDATED", ActorUserID: "u-104", ActorUserRole: "Admin", TargetEntity: "Integration", TargetEntityID: "cfg-3", Summary: "Integration Connected", Details: map[string]interface{}{"provider": "Stripe"}},
	}
}

func seedRoles() []models.Role {
	return []models.Role{
		{RoleID: "role-super", RoleName: models.SuperAdminRole, Description: "Platform owner role", IsSystemRole: true},
		{RoleID: "role-credit", RoleName: "Credit Manager", Description: "Manages loan approvals"},
		{RoleID: "role-analyst", RoleName: "Analyst", Description: "Views data and prepares reports"},
	}
}

func seedPermissions() []models.Permission {
	return []models.Permission{
		{PermissionID: "LOAN_CREATE", Module: "Loans", Action: "Create", Name: "Create New Loan"},
		{PermissionID: "LOAN_VIEW_ALL", Module: "Loans", Action: "View", Name: "View All Loans"},
		{PermissionID: "LOAN_APPROVE", Module: "Loans", Action: "Update", Name: "Approve Loan"},
		{PermissionID: "USER_VIEW", Module: "Users", Action: "View", Name: "View User List"},
		{PermissionID: "USER_EDIT_ROLE", Module: "Users", Action: "Update", Name: "Edit User Role"},
		{PermissionID: "REPORT_DOWNLOAD", Module: "Reports", Action: "Create", Name: "Download Reports"},
	}
}

func seedGrants(perms []models.Permission) map[string][]string {
	all := make([]string, 0, len(perms))
	for _, p := range perms {
		all = append(all, p.PermissionID)
	}
	return map[string][]string{
		"role-super":   all,
		"role-credit":  {"LOAN_VIEW_ALL", "LOAN_APPROVE", "REPORT_DOWNLOAD"},
		"role-analyst": {"LOAN_VIEW_ALL", "REPORT_DOWNLOAD"},
	}
}

func seedUsers(now time.Time) []models.User {
	return []models.User{
		{UserID: "u-101", TenantID: "tenant-001", Name: "Amit Sharma", Email: "amit@metrocredit.com", PhoneNumber: "+911234567890", RoleID: "role-credit", RoleName: "Credit Manager", Status: models.StatusActive, LastLogin: timePtr(now.Add(-day))},
		{UserID: "u-102", TenantID: "tenant-001", Name: "Neha Verma", Email: "neha@metrocredit.com", PhoneNumber: "+919876543210", RoleID: "role-analyst", RoleName: "Analyst", Status: models.StatusPendingActivation},
		{UserID: "u-103", TenantID: "tenant-002", Name: "Rahul Mehta", Email: "rahul@sunrisecapital.com", PhoneNumber: "+441234567890", RoleID: "role-analyst", RoleName: "Analyst", Status: models.StatusInactive, LastLogin: timePtr(now.Add(-3 * day))},
	}
}

func seedProducts() []models.LoanProduct {
	return []models.LoanProduct{
		{ProductID: "prod-001", BusinessName: "All", TypeOfLoan: "Personal Loan", Subcategory: "UNSECURED", Status: models.StatusActive},
		{ProductID: "prod-002", BusinessName: "All", TypeOfLoan: "Home Loan", Subcategory: "SECURED", Status: models.StatusActive},
		{ProductID: "prod-003", BusinessName: "Metro Credit", TypeOfLoan: "Gold Loan", Subcategory: "SECURED", Status: models.StatusInactive},
	}
}

func seedSettings() []models.Setting {
	return []models.Setting{
		{Key: "LOAN_DEFAULT_INTEREST_RATE", Value: "0.12", DataType: "DECIMAL", Group: "loan"},
		{Key: "LOAN_MAX_AMOUNT", Value: "1000000", DataType: "DECIMAL", Group: "loan"},
		{Key: "LOAN_MIN_TERM_MONTHS", Value: "6", DataType: "INTEGER", Group: "loan"},
		{Key: "DEFAULT_CURRENCY_SYMBOL", Value: "₹", DataType: "STRING", Group: "loan"},
		{Key: "PASSWORD_MIN_LENGTH", Value: "8", DataType: "INTEGER", Group: "system"},
		{Key: "SESSION_TIMEOUT_MINUTES", Value: "30", DataType: "INTEGER", Group: "system"},
		{Key: "ALLOW_ANONYMOUS_SIGNUP", Value: "false", DataType: "BOOLEAN", Group: "system"},
		{Key: "NOTIFICATION_SENDER_EMAIL", Value: "no-reply@platform.com", DataType: "STRING", Group: "notify"},
		{Key: "WEBHOOK_SECRET_KEY", Value: "super-secret", DataType: "STRING", IsEncrypted: true, Group: "notify"},
	}
}

func seedNotifications(now time.Time) []models.Notification {
	return []models.Notification{
		{NotificationID: "n-001", Title: "System Update", Message: "Settings saved successfully.", CreatedAt: now},
		{NotificationID: "n-002", Title: "New Tenant Signup", Message: "Sunrise Capital applied for onboarding.", CreatedAt: now.Add(-time.Hour)},
		{NotificationID: "n-003", Title: "Report Ready", Message: "Loan Activity report is available to download.", CreatedAt: now.Add(-2 * time.Hour), Read: true},
	}
}

func seedIntegrations(now time.Time) []models.IntegrationConfig {
	return []models.IntegrationConfig{
		{ConfigID: "cfg-1", IntegrationType: "KYC_API", ProviderName: "MetroKYC", APIKeyEncrypted: "***", EndpointURL: "https://api.test.metokyc.com", Status: models.IntegrationPending},
		{ConfigID: "cfg-2", IntegrationType: "CREDIT_BUREAU", TenantID: strPtr("tenant-001"), ProviderName: "Experian", APIKeyEncrypted: "***", EndpointURL: "https://api.credit.test/experian", Status: models.IntegrationDisconnected},
		{ConfigID: "cfg-3", IntegrationType: "PAYMENT_GATEWAY", TenantID: strPtr("tenant-001"), ProviderName: "Stripe", APIKeyEncrypted: "***", EndpointURL: "https://api.stripe.com", Status: models.IntegrationConnected, LastValidated: timePtr(now)},
	}
}

func seedLeads(now time.Time) []models.Lead {
	return []models.Lead{
		{LeadID: "lead-001", Name: "Anita Desai", Phone: "+919812345678", Email: "anita.desai@example.com", Source: "Website", Status: models.LeadNew, CreatedAt: now.Add(-2 * day)},
		{LeadID: "lead-002", Name: "Suresh Nair", Phone: "+919823456789", Email: "suresh.nair@example.com", Source: "Referral", Status: models.LeadContacted, CreatedAt: now.Add(-5 * day)},
		{LeadID: "lead-003", Name: "Farah Ali", Phone: "+919834567890", Source: "Walk-in", Status: models.LeadNew, CreatedAt: now.Add(-day)},
	}
}

func seedOverdue(now time.Time) []models.OverdueAccount {
	return []models.OverdueAccount{
		{LoanID: "LN005", TenantID: "tenant-003", BorrowerName: "Vikram Singh", OverdueAmount: 42500, DaysPastDue: 45, Bucket: "31-60", LastContacted: timePtr(now.Add(-3 * day))},
		{LoanID: "LN002", TenantID: "tenant-001", BorrowerName: "Neha Verma", OverdueAmount: 18200, DaysPastDue: 12, Bucket: "1-30"},
		{LoanID: "LN009", TenantID: "tenant-001", BorrowerName: "Rohit Gupta", OverdueAmount: 96000, DaysPastDue: 120, Bucket: "NPA"},
	}
}

func seedDashboard() models.Dashboard {
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	amounts := []int64{420000, 460000, 520000, 580000, 600000, 640000, 680000, 720000, 760000, 780000, 800000, 820000}
	monthly := make([]models.MonthlyAmount, len(months))
	for i := range months {
		monthly[i] = models.MonthlyAmount{Month: months[i], Amount: amounts[i]}
	}
	return models.Dashboard{
		KPIs: models.KPIs{
			TotalTenants:    24,
			TenantsTrend:    "+12.5%",
			ActiveUsers:     3847,
			UsersTrend:      "+8.2%",
			TotalLoans:      45892,
			LoansTrend:      "+15.3%",
			DisbursedAmount: "₹2,847 Cr",
			AmountTrend:     "+22.1%",
		},
		Charts: models.Charts{
			MonthlyDisbursement: monthly,
			LoanStatusDistribution: []models.StatusCount{
				{Status: "Active", Count: 50},
				{Status: "Paid Off", Count: 25},
				{Status: "Default", Count: 1},
				{Status: "Pending", Count: 5},
			},
			RecentActivity: []models.Activity{
				{Title: "Loan Application Approved", Subtitle: "HDFC Bank", Time: "2024-12-15 14:30:25"},
				{Title: "Failed Login Attempt", Subtitle: "Bajaj Finance", Time: "2024-12-15 14:25:10"},
				{Title: "Credit Bureau API Called", Subtitle: "Muthoot Finance", Time: "2024-12-15 14:20:45"},
			},
		},
	}
}
