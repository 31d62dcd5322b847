// Package mock serves every backend capability from in-memory tables seeded
// with demo fixtures. It is selected when no API base URL is configured.
package mock

import (
	"sync"
	"time"

	"github.com/juju/clock"

	"losadmin/internal/backend"
	"losadmin/internal/models"
)

// Store owns the mock tables. One Store is shared by everything in a session,
// so a row created through one client is visible to all others.
type Store struct {
	clock clock.Clock

	Tenants       *Table[models.Tenant]
	Branches      *Table[models.Branch]
	Users         *Table[models.User]
	Roles         *Table[models.Role]
	Products      *Table[models.LoanProduct]
	Loans         *Table[models.LoanApplication]
	Logs          *Table[models.LogEntry]
	Notifications *Table[models.Notification]
	Settings      *Table[models.Setting]
	Integrations  *Table[models.IntegrationConfig]
	Leads         *Table[models.Lead]
	Overdue       *Table[models.OverdueAccount]
	Applications  *Table[models.TenantApplication]

	permissions []models.Permission

	mu        sync.RWMutex
	grants    map[string][]string
	profile   models.Profile
	dashboard models.Dashboard
}

// NewStore returns a store seeded with the demo fixtures, timestamped against the wall clock.
func NewStore() *Store {
	return NewStoreWithClock(clock.WallClock)
}

// NewStoreWithClock seeds relative timestamps from clk.Now().
func NewStoreWithClock(clk clock.Clock) *Store {
	now := clk.Now().UTC()
	s := &Store{
		clock:       clk,
		permissions: seedPermissions(),
		profile:     models.Profile{FullName: "Admin", Email: DemoEmail},
		dashboard:   seedDashboard(),
	}
	s.grants = seedGrants(s.permissions)

	s.Tenants = NewTable(Schema[models.Tenant]{
		Resource: "tenant",
		IDPrefix: "tenant-",
		ID:       func(t *models.Tenant) *string { return &t.TenantID },
		SearchFields: func(t *models.Tenant) []string {
			return []string{t.CompanyName, t.Email, t.TenantID}
		},
		Match: func(t *models.Tenant, p backend.ListParams) bool {
			return matches(p.Status, t.Status)
		},
		OnCreate: func(t *models.Tenant) {
			if t.CreatedAt == "" {
				t.CreatedAt = models.Date(s.now().Format("2006-01-02"))
			}
			if t.Status == "" {
				t.Status = models.StatusActive
			}
		},
	}, seedTenants())

	s.Branches = NewTable(Schema[models.Branch]{
		Resource: "branch",
		IDPrefix: "br-",
		ID:       func(b *models.Branch) *string { return &b.BranchID },
		SearchFields: func(b *models.Branch) []string {
			return []string{b.BranchName, b.BranchCode, b.City}
		},
		Match: func(b *models.Branch, p backend.ListParams) bool {
			return matches(p.TenantID, b.TenantID) && matches(p.Status, b.Status)
		},
		OnCreate: func(b *models.Branch) {
			if b.CreatedAt == "" {
				b.CreatedAt = models.Date(s.now().Format("2006-01-02"))
			}
			if b.Status == "" {
				b.Status = models.StatusActive
			}
		},
	}, seedBranches())

	s.Users = NewTable(Schema[models.User]{
		Resource: "user",
		IDPrefix: "u-",
		ID:       func(u *models.User) *string { return &u.UserID },
		SearchFields: func(u *models.User) []string {
			return []string{u.Name, u.Email, u.PhoneNumber}
		},
		Match: func(u *models.User, p backend.ListParams) bool {
			return matches(p.RoleID, u.RoleID) && matches(p.TenantID, u.TenantID) && matches(p.Status, u.Status)
		},
		OnCreate: func(u *models.User) {
			if u.Status == "" {
				u.Status = models.StatusPendingActivation
			}
			if u.RoleName == "" && u.RoleID != "" {
				if role, ok := s.roleByID(u.RoleID); ok {
					u.RoleName = role.RoleName
				}
			}
		},
	}, seedUsers(now))

	s.Roles = NewTable(Schema[models.Role]{
		Resource: "role",
		IDPrefix: "role-",
		ID:       func(r *models.Role) *string { return &r.RoleID },
		SearchFields: func(r *models.Role) []string {
			return []string{r.RoleName, r.Description}
		},
	}, seedRoles())

	s.Products = NewTable(Schema[models.LoanProduct]{
		Resource: "loan product",
		IDPrefix: "prod-",
		ID:       func(p *models.LoanProduct) *string { return &p.ProductID },
		SearchFields: func(p *models.LoanProduct) []string {
			return []string{p.TypeOfLoan, p.Subcategory, p.BusinessName}
		},
		Match: func(lp *models.LoanProduct, p backend.ListParams) bool {
			return matches(p.Status, lp.Status)
		},
		OnCreate: func(p *models.LoanProduct) {
			if p.BusinessName == "" {
				p.BusinessName = "All"
			}
			if p.Status == "" {
				p.Status = models.StatusActive
			}
		},
	}, seedProducts())

	s.Loans = NewTable(Schema[models.LoanApplication]{
		Resource: "loan application",
		IDPrefix: "LN-",
		ID:       func(l *models.LoanApplication) *string { return &l.LoanID },
		SearchFields: func(l *models.LoanApplication) []string {
			return []string{l.ApplicantName, l.LoanID}
		},
		Match: func(l *models.LoanApplication, p backend.ListParams) bool {
			return matches(p.TenantID, l.TenantID) && matches(p.Status, l.Status)
		},
		OnCreate: func(l *models.LoanApplication) {
			if l.AppliedOn.IsZero() {
				l.AppliedOn = s.now()
			}
			if l.Status == "" {
				l.Status = models.LoanPending
			}
		},
	}, seedLoans(now))

	s.Logs = NewTable(Schema[models.LogEntry]{
		Resource: "log entry",
		IDPrefix: "LG-",
		ID:       func(l *models.LogEntry) *string { return &l.LogID },
		SearchFields: func(l *models.LogEntry) []string {
			return []string{l.Summary, l.EventType, l.ActorUserID, l.TargetEntityID}
		},
		Match: func(l *models.LogEntry, p backend.ListParams) bool {
			if p.TenantID == "" {
				return true
			}
			return l.TenantID != nil && *l.TenantID == p.TenantID
		},
		OnCreate: func(l *models.LogEntry) {
			if l.Timestamp.IsZero() {
				l.Timestamp = s.now()
			}
		},
	}, seedLogs(now))

	s.Notifications = NewTable(Schema[models.Notification]{
		Resource: "notification",
		IDPrefix: "n-",
		ID:       func(n *models.Notification) *string { return &n.NotificationID },
		SearchFields: func(n *models.Notification) []string {
			return []string{n.Title, n.Message}
		},
		OnCreate: func(n *models.Notification) {
			if n.CreatedAt.IsZero() {
				n.CreatedAt = s.now()
			}
		},
	}, seedNotifications(now))

	s.Settings = NewTable(Schema[models.Setting]{
		Resource: "setting",
		ID:       func(st *models.Setting) *string { return &st.Key },
	}, seedSettings())

	s.Integrations = NewTable(Schema[models.IntegrationConfig]{
		Resource: "integration",
		IDPrefix: "cfg-",
		ID:       func(c *models.IntegrationConfig) *string { return &c.ConfigID },
		SearchFields: func(c *models.IntegrationConfig) []string {
			return []string{c.ProviderName, c.IntegrationType}
		},
		Match: func(c *models.IntegrationConfig, p backend.ListParams) bool {
			if p.TenantID != "" && (c.TenantID == nil || *c.TenantID != p.TenantID) {
				return false
			}
			return matches(p.Status, c.Status)
		},
		OnCreate: func(c *models.IntegrationConfig) {
			if c.Status == "" {
				c.Status = models.IntegrationPending
			}
		},
	}, seedIntegrations(now))

	s.Leads = NewTable(Schema[models.Lead]{
		Resource: "lead",
		IDPrefix: "lead-",
		ID:       func(l *models.Lead) *string { return &l.LeadID },
		SearchFields: func(l *models.Lead) []string {
			return []string{l.Name, l.Phone, l.Email}
		},
		Match: func(l *models.Lead, p backend.ListParams) bool {
			return matches(p.Status, l.Status)
		},
		OnCreate: func(l *models.Lead) {
			if l.CreatedAt.IsZero() {
				l.CreatedAt = s.now()
			}
			if l.Status == "" {
				l.Status = models.LeadNew
			}
		},
	}, seedLeads(now))

	s.Overdue = NewTable(Schema[models.OverdueAccount]{
		Resource: "overdue account",
		ID:       func(a *models.OverdueAccount) *string { return &a.LoanID },
		SearchFields: func(a *models.OverdueAccount) []string {
			return []string{a.BorrowerName, a.LoanID}
		},
		Match: func(a *models.OverdueAccount, p backend.ListParams) bool {
			return matches(p.TenantID, a.TenantID) && matches(p.Status, a.Bucket)
		},
	}, seedOverdue(now))

	s.Applications = NewTable(Schema[models.TenantApplication]{
		Resource: "tenant application",
		IDPrefix: "app-",
		ID:       func(a *models.TenantApplication) *string { return &a.ApplicationID },
		OnCreate: func(a *models.TenantApplication) {
			a.SubmittedAt = s.now()
		},
	}, nil)

	return s
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Store) roleByID(id string) (models.Role, bool) {
	for _, r := range s.Roles.Snapshot() {
		if r.RoleID == id {
			return r, true
		}
	}
	return models.Role{}, false
}

// LoanApplications, TenantRecords and LogEntries expose snapshots for report generation.
func (s *Store) LoanApplications() []models.LoanApplication { return s.Loans.Snapshot() }

func (s *Store) TenantRecords() []models.Tenant { return s.Tenants.Snapshot() }

func (s *Store) LogEntries() []models.LogEntry { return s.Logs.Snapshot() }

// matches treats an empty filter as a wildcard. Comparison is exact.
func matches(filter, value string) bool {
	return filter == "" || filter == value
}
