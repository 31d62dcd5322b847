package resources

import (
	"context"

	"losadmin/internal/backend"
	"losadmin/internal/events"
	"losadmin/internal/models"
)

// Clients is the full set of resource clients over one backend. The backend
// is picked once, when the console is built.
type Clients struct {
	Tenants       *Collection[models.Tenant]
	Branches      *Collection[models.Branch]
	Users         *Collection[models.User]
	Roles         *Roles
	Products      *Collection[models.LoanProduct]
	Loans         *Loans
	Logs          *Collection[models.LogEntry]
	Notifications *Notifications
	Settings      *Settings
	Integrations  *Integrations
	Leads         *Leads
	Collections   *Dues
	Profile       *Profile
	Signup        *Signup
	Dashboard     *Dashboard
	Reports       *Reports

	mode string
}

// New builds every client over b. Mutations are published on bus, which may be nil.
func New(b backend.Backend, bus *events.EventBus) *Clients {
	return &Clients{
		Tenants:  newCollection("tenants", b.Tenants(), func(t models.Tenant) string { return t.TenantID }, bus),
		Branches: newCollection("branches", b.Branches(), func(br models.Branch) string { return br.BranchID }, bus),
		Users:    newCollection("users", b.Users(), func(u models.User) string { return u.UserID }, bus),
		Roles: &Roles{
			Collection: newCollection[models.Role]("roles", b.Roles(), func(r models.Role) string { return r.RoleID }, bus),
			store:      b.Roles(),
		},
		Products: newCollection("products", b.Products(), func(p models.LoanProduct) string { return p.ProductID }, bus),
		Loans: &Loans{
			Collection: newCollection[models.LoanApplication]("loans", b.Loans(), func(l models.LoanApplication) string { return l.LoanID }, bus),
			store:      b.Loans(),
		},
		Logs:          newCollection("logs", b.Logs(), func(l models.LogEntry) string { return l.LogID }, bus),
		Notifications: &Notifications{store: b.Notifications(), bus: bus},
		Settings:      &Settings{store: b.Settings(), bus: bus},
		Integrations: &Integrations{
			Collection: newCollection[models.IntegrationConfig]("integrations", b.Integrations(), func(i models.IntegrationConfig) string { return i.ConfigID }, bus),
			store:      b.Integrations(),
		},
		Leads: &Leads{
			Collection: newCollection[models.Lead]("leads", b.Leads(), func(l models.Lead) string { return l.LeadID }, bus),
			store:      b.Leads(),
		},
		Collections: &Dues{store: b.Dues(), bus: bus},
		Profile:     &Profile{store: b.Profile(), bus: bus},
		Signup:      &Signup{store: b.Signup()},
		Dashboard:   &Dashboard{store: b.Dashboard()},
		Reports:     &Reports{store: b.Reports()},
		mode:        b.Mode(),
	}
}

// Mode is "mock" or "live".
func (c *Clients) Mode() string { return c.mode }

func emit(bus *events.EventBus, resource, id, op string) {
	bus.Emit(events.ResourceChanged, events.Changed{Resource: resource, ID: id, Op: op})
}

// Roles hides the built-in Super Admin role from listings.
type Roles struct {
	*Collection[models.Role]
	store backend.RoleStore
}

func (r *Roles) List(ctx context.Context, params backend.ListParams) (Result[[]models.Role], error) {
	rows, err := r.store.List(ctx, params)
	if err == nil {
		visible := make([]models.Role, 0, len(rows))
		for _, role := range rows {
			if role.RoleName != models.SuperAdminRole {
				visible = append(visible, role)
			}
		}
		rows = visible
	}
	return settle(r.name, "list", rows, err)
}

// Catalogue lists every permission that can be granted.
func (r *Roles) Catalogue(ctx context.Context) (Result[[]models.Permission], error) {
	perms, err := r.store.Permissions(ctx)
	return settle(r.name, "permissions", perms, err)
}

func (r *Roles) Permissions(ctx context.Context, roleID string) (Result[[]string], error) {
	ids, err := r.store.Granted(ctx, roleID)
	return settle(r.name, "get permissions", ids, err)
}

// UpdatePermissions replaces the granted set of roleID.
func (r *Roles) UpdatePermissions(ctx context.Context, roleID string, permissionIDs []string) (Result[Empty], error) {
	err := r.store.Grant(ctx, roleID, permissionIDs)
	if err == nil {
		r.changed(roleID, OpUpdate)
	}
	return settleErr(r.name, "update permissions", err)
}

type Loans struct {
	*Collection[models.LoanApplication]
	store backend.LoanStore
}

// Act applies Approve, Reject or Disburse with an optional reason.
func (l *Loans) Act(ctx context.Context, id, action, reason string) (Result[models.LoanApplication], error) {
	loan, err := l.store.Act(ctx, id, models.LoanAction{Action: action, Reason: reason})
	if err == nil {
		l.changed(id, OpAction)
	}
	return settle(l.name, "action", loan, err)
}

type Integrations struct {
	*Collection[models.IntegrationConfig]
	store backend.IntegrationStore
}

func (i *Integrations) Validate(ctx context.Context, id string) (Result[models.IntegrationConfig], error) {
	cfg, err := i.store.Validate(ctx, id)
	if err == nil {
		i.changed(id, OpAction)
	}
	return settle(i.name, "validate", cfg, err)
}

type Leads struct {
	*Collection[models.Lead]
	store backend.LeadStore
}

func (l *Leads) LogCall(ctx context.Context, id, notes string) (Result[Empty], error) {
	err := l.store.LogCall(ctx, id, notes)
	if err == nil {
		l.changed(id, OpAction)
	}
	return settleErr(l.name, "log call", err)
}

// Convert turns the lead into a loan application and returns the application id.
func (l *Leads) Convert(ctx context.Context, id string) (Result[string], error) {
	appID, err := l.store.Convert(ctx, id)
	if err == nil {
		l.changed(id, OpAction)
		l.bus.Emit(events.ResourceChanged, events.Changed{Resource: "loans", ID: appID, Op: OpCreate})
	}
	return settle(l.name, "convert", appID, err)
}

func (l *Leads) UpdateStatus(ctx context.Context, id, status string) (Result[models.Lead], error) {
	return l.Update(ctx, id, backend.Patch{"status": status})
}

type Notifications struct {
	store backend.NotificationStore
	bus   *events.EventBus
}

func (n *Notifications) List(ctx context.Context) (Result[[]models.Notification], error) {
	rows, err := n.store.List(ctx)
	return settle("notifications", "list", rows, err)
}

func (n *Notifications) MarkRead(ctx context.Context, id string) (Result[Empty], error) {
	err := n.store.MarkRead(ctx, id)
	if err == nil {
		emit(n.bus, "notifications", id, OpUpdate)
	}
	return settleErr("notifications", "mark read", err)
}

type Settings struct {
	store backend.SettingsStore
	bus   *events.EventBus
}

// List returns the settings grouped into loan, system and notify.
func (s *Settings) List(ctx context.Context) (Result[models.SettingGroups], error) {
	groups, err := s.store.List(ctx)
	return settle("settings", "list", groups, err)
}

func (s *Settings) Update(ctx context.Context, values map[string]string) (Result[Empty], error) {
	err := s.store.Update(ctx, values)
	if err == nil {
		emit(s.bus, "settings", "", OpUpdate)
	}
	return settleErr("settings", "update", err)
}

// Dues is the collections desk client.
type Dues struct {
	store backend.Dues
	bus   *events.EventBus
}

func (d *Dues) Stats(ctx context.Context) (Result[models.CollectionStats], error) {
	stats, err := d.store.Stats(ctx)
	return settle("collections", "stats", stats, err)
}

func (d *Dues) Overdue(ctx context.Context, params backend.ListParams) (Result[[]models.OverdueAccount], error) {
	rows, err := d.store.Overdue(ctx, params)
	return settle("collections", "queue", rows, err)
}

func (d *Dues) LogCall(ctx context.Context, loanID, remarks string) (Result[Empty], error) {
	err := d.store.LogCall(ctx, loanID, remarks)
	if err == nil {
		emit(d.bus, "collections", loanID, OpAction)
	}
	return settleErr("collections", "log call", err)
}

func (d *Dues) SendNotice(ctx context.Context, loanID, noticeType string) (Result[Empty], error) {
	err := d.store.SendNotice(ctx, loanID, noticeType)
	if err == nil {
		emit(d.bus, "collections", loanID, OpAction)
	}
	return settleErr("collections", "send notice", err)
}

type Profile struct {
	store backend.ProfileStore
	bus   *events.EventBus
}

func (p *Profile) Get(ctx context.Context) (Result[models.Profile], error) {
	prof, err := p.store.Get(ctx)
	return settle("profile", "get", prof, err)
}

func (p *Profile) Update(ctx context.Context, patch backend.Patch) (Result[models.Profile], error) {
	prof, err := p.store.Update(ctx, patch)
	if err == nil {
		emit(p.bus, "profile", "", OpUpdate)
	}
	return settle("profile", "update", prof, err)
}

type Signup struct {
	store backend.SignupStore
}

// Submit registers a tenant application and returns its id.
func (s *Signup) Submit(ctx context.Context, req models.SignupRequest) (Result[string], error) {
	id, err := s.store.Submit(ctx, req)
	return settle("signup", "submit", id, err)
}

type Dashboard struct {
	store backend.DashboardStore
}

func (d *Dashboard) Fetch(ctx context.Context) (Result[models.Dashboard], error) {
	dash, err := d.store.Fetch(ctx)
	return settle("dashboard", "fetch", dash, err)
}

// Export returns the export URL. An empty URL is still a success.
func (d *Dashboard) Export(ctx context.Context) (Result[string], error) {
	url, err := d.store.Export(ctx)
	return settle("dashboard", "export", url, err)
}

// Reports drives the generate, poll, download cycle.
type Reports struct {
	store backend.ReportJobs
}

func (r *Reports) Generate(ctx context.Context, req models.ReportRequest) (Result[models.ReportJob], error) {
	job, err := r.store.Generate(ctx, req)
	return settle("reports", "generate", job, err)
}

func (r *Reports) Status(ctx context.Context, jobID string) (Result[string], error) {
	status, err := r.store.Status(ctx, jobID)
	return settle("reports", "status", status, err)
}

// Download succeeds only for a completed job.
func (r *Reports) Download(ctx context.Context, jobID string) (Result[string], error) {
	url, err := r.store.Download(ctx, jobID)
	return settle("reports", "download", url, err)
}
