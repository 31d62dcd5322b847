// Package backend defines the capability interfaces a resource client needs.
// Two implementations exist: mock (in-memory fixtures) and remote (REST API).
// The choice is made once, when the console is built.
package backend

import (
	"context"

	"losadmin/internal/models"
)

// ListParams filters list operations. Zero fields are ignored.
type ListParams struct {
	Search   string `url:"search,omitempty"`
	TenantID string `url:"tenant,omitempty"`
	RoleID   string `url:"role,omitempty"`
	Status   string `url:"status,omitempty"`
}

// Patch is a partial update keyed by JSON field name.
type Patch map[string]interface{}

// Collection is the CRUD capability shared by every resource.
type Collection[T any] interface {
	List(ctx context.Context, params ListParams) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, body T) (T, error)
	Update(ctx context.Context, id string, patch Patch) (T, error)
	Delete(ctx context.Context, id string) error
}

type RoleStore interface {
	Collection[models.Role]
	Permissions(ctx context.Context) ([]models.Permission, error)
	Granted(ctx context.Context, roleID string) ([]string, error)
	// Grant replaces the full set of granted permission ids of a role.
	Grant(ctx context.Context, roleID string, permissionIDs []string) error
}

type LoanStore interface {
	Collection[models.LoanApplication]
	Act(ctx context.Context, id string, action models.LoanAction) (models.LoanApplication, error)
}

type IntegrationStore interface {
	Collection[models.IntegrationConfig]
	Validate(ctx context.Context, id string) (models.IntegrationConfig, error)
}

type NotificationStore interface {
	List(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type SettingsStore interface {
	List(ctx context.Context) (models.SettingGroups, error)
	// Update sets values by key; unknown keys are rejected.
	Update(ctx context.Context, values map[string]string) error
}

type LeadStore interface {
	Collection[models.Lead]
	LogCall(ctx context.Context, id, notes string) error
	// Convert turns a lead into a loan application and returns its id.
	Convert(ctx context.Context, id string) (string, error)
}

// Dues is the collections desk: overdue loans and the actions taken on them.
type Dues interface {
	Stats(ctx context.Context) (models.CollectionStats, error)
	Overdue(ctx context.Context, params ListParams) ([]models.OverdueAccount, error)
	LogCall(ctx context.Context, loanID, remarks string) error
	SendNotice(ctx context.Context, loanID, noticeType string) error
}

type ProfileStore interface {
	Get(ctx context.Context) (models.Profile, error)
	Update(ctx context.Context, patch Patch) (models.Profile, error)
}

type SignupStore interface {
	Submit(ctx context.Context, req models.SignupRequest) (string, error)
}

type DashboardStore interface {
	Fetch(ctx context.Context) (models.Dashboard, error)
	// Export returns a URL to a dashboard export; empty when none is produced.
	Export(ctx context.Context) (string, error)
}

// ReportJobs is the asynchronous report generation capability.
type ReportJobs interface {
	Generate(ctx context.Context, req models.ReportRequest) (models.ReportJob, error)
	Status(ctx context.Context, jobID string) (string, error)
	// Download returns the artifact URL of a completed job.
	Download(ctx context.Context, jobID string) (string, error)
}

// Backend groups every capability the console consumes.
type Backend interface {
	Tenants() Collection[models.Tenant]
	Branches() Collection[models.Branch]
	Users() Collection[models.User]
	Roles() RoleStore
	Products() Collection[models.LoanProduct]
	Loans() LoanStore
	Logs() Collection[models.LogEntry]
	Notifications() NotificationStore
	Settings() SettingsStore
	Integrations() IntegrationStore
	Leads() LeadStore
	Dues() Dues
	Profile() ProfileStore
	Signup() SignupStore
	Dashboard() DashboardStore
	Reports() ReportJobs
	// Mode is "mock" or "live".
	Mode() string
}
