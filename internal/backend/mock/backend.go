package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"losadmin/internal/backend"
	"losadmin/internal/models"
)

// Backend implements backend.Backend over a Store. Report jobs are delegated
// to the injected manager so completion scheduling stays out of this package.
type Backend struct {
	store   *Store
	reports backend.ReportJobs
}

var _ backend.Backend = (*Backend)(nil)

func New(store *Store, reports backend.ReportJobs) *Backend {
	return &Backend{store: store, reports: reports}
}

func (b *Backend) Mode() string { return "mock" }

func (b *Backend) Store() *Store { return b.store }

func (b *Backend) Tenants() backend.Collection[models.Tenant]       { return b.store.Tenants }
func (b *Backend) Branches() backend.Collection[models.Branch]      { return b.store.Branches }
func (b *Backend) Users() backend.Collection[models.User]           { return b.store.Users }
func (b *Backend) Products() backend.Collection[models.LoanProduct] { return b.store.Products }
func (b *Backend) Logs() backend.Collection[models.LogEntry]        { return b.store.Logs }

func (b *Backend) Roles() backend.RoleStore                 { return roleStore{b.store.Roles, b.store} }
func (b *Backend) Loans() backend.LoanStore                 { return loanStore{b.store.Loans} }
func (b *Backend) Integrations() backend.IntegrationStore   { return integrationStore{b.store.Integrations, b.store} }
func (b *Backend) Notifications() backend.NotificationStore { return notificationStore{b.store} }
func (b *Backend) Settings() backend.SettingsStore          { return settingsStore{b.store} }
func (b *Backend) Leads() backend.LeadStore                 { return leadStore{b.store.Leads, b.store} }
func (b *Backend) Dues() backend.Dues                       { return duesStore{b.store} }
func (b *Backend) Profile() backend.ProfileStore            { return profileStore{b.store} }
func (b *Backend) Signup() backend.SignupStore              { return signupStore{b.store} }
func (b *Backend) Dashboard() backend.DashboardStore        { return dashboardStore{b.store} }
func (b *Backend) Reports() backend.ReportJobs              { return b.reports }

type roleStore struct {
	*Table[models.Role]
	store *Store
}

func (r roleStore) Delete(ctx context.Context, id string) error {
	if err := r.Table.Delete(ctx, id); err != nil {
		return err
	}
	r.store.mu.Lock()
	delete(r.store.grants, id)
	r.store.mu.Unlock()
	return nil
}

func (r roleStore) Permissions(context.Context) ([]models.Permission, error) {
	out := make([]models.Permission, len(r.store.permissions))
	copy(out, r.store.permissions)
	return out, nil
}

func (r roleStore) Granted(_ context.Context, roleID string) ([]string, error) {
	if _, ok := r.store.roleByID(roleID); !ok {
		return nil, backend.NotFound("role", roleID)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]string{}, r.store.grants[roleID]...), nil
}

func (r roleStore) Grant(_ context.Context, roleID string, permissionIDs []string) error {
	if _, ok := r.store.roleByID(roleID); !ok {
		return backend.NotFound("role", roleID)
	}
	known := make(map[string]bool, len(r.store.permissions))
	for _, p := range r.store.permissions {
		known[p.PermissionID] = true
	}
	seen := map[string]bool{}
	granted := make([]string, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		if !known[id] {
			return backend.NotValid("permission %q", id)
		}
		if !seen[id] {
			seen[id] = true
			granted = append(granted, id)
		}
	}
	r.store.mu.Lock()
	r.store.grants[roleID] = granted
	r.store.mu.Unlock()
	return nil
}

type loanStore struct {
	*Table[models.LoanApplication]
}

// Act sets the status the action maps to. Any status may follow any other.
func (l loanStore) Act(_ context.Context, id string, action models.LoanAction) (models.LoanApplication, error) {
	status, ok := action.StatusFor()
	if !ok {
		return models.LoanApplication{}, backend.NotValid("loan action %q", action.Action)
	}
	return l.Mutate(id, func(loan *models.LoanApplication) error {
		loan.Status = status
		loan.Reason = action.Reason
		return nil
	})
}

type integrationStore struct {
	*Table[models.IntegrationConfig]
	store *Store
}

func (i integrationStore) Validate(_ context.Context, id string) (models.IntegrationConfig, error) {
	now := i.store.now()
	return i.Mutate(id, func(c *models.IntegrationConfig) error {
		c.Status = models.IntegrationConnected
		c.LastValidated = &now
		return nil
	})
}

type notificationStore struct {
	store *Store
}

func (n notificationStore) List(ctx context.Context) ([]models.Notification, error) {
	return n.store.Notifications.List(ctx, backend.ListParams{})
}

func (n notificationStore) MarkRead(_ context.Context, id string) error {
	_, err := n.store.Notifications.Mutate(id, func(row *models.Notification) error {
		row.Read = true
		return nil
	})
	return err
}

type settingsStore struct {
	store *Store
}

func (s settingsStore) List(context.Context) (models.SettingGroups, error) {
	groups := models.SettingGroups{
		Loan:   []models.Setting{},
		System: []models.Setting{},
		Notify: []models.Setting{},
	}
	for _, st := range s.store.Settings.Snapshot() {
		switch st.Group {
		case "loan":
			groups.Loan = append(groups.Loan, st)
		case "system":
			groups.System = append(groups.System, st)
		case "notify":
			groups.Notify = append(groups.Notify, st)
		}
	}
	return groups, nil
}

// Update checks every key before writing any, so a bad key leaves all values untouched.
func (s settingsStore) Update(_ context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	known := map[string]bool{}
	for _, st := range s.store.Settings.Snapshot() {
		known[st.Key] = true
	}
	for _, k := range keys {
		if !known[k] {
			return backend.NotFound("setting", k)
		}
	}
	for _, k := range keys {
		v := values[k]
		if _, err := s.store.Settings.Mutate(k, func(st *models.Setting) error {
			st.Value = v
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

type leadStore struct {
	*Table[models.Lead]
	store *Store
}

func (l leadStore) LogCall(_ context.Context, id, notes string) error {
	if strings.TrimSpace(notes) == "" {
		return backend.NotValid("call notes are empty")
	}
	now := l.store.now()
	_, err := l.Mutate(id, func(lead *models.Lead) error {
		lead.Calls = append(lead.Calls, models.CallNote{Notes: notes, LoggedAt: now})
		if lead.Status == models.LeadNew {
			lead.Status = models.LeadContacted
		}
		return nil
	})
	return err
}

// Convert opens a pending loan application for the lead and marks it converted.
func (l leadStore) Convert(ctx context.Context, id string) (string, error) {
	lead, err := l.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if lead.Status == models.LeadConverted {
		return "", backend.NotValid("lead %q already converted", id)
	}
	loan, err := l.store.Loans.Create(ctx, models.LoanApplication{
		ApplicantName: lead.Name,
		Status:        models.LoanPending,
	})
	if err != nil {
		return "", err
	}
	if _, err := l.Mutate(id, func(row *models.Lead) error {
		row.Status = models.LeadConverted
		return nil
	}); err != nil {
		return "", err
	}
	return loan.LoanID, nil
}

type duesStore struct {
	store *Store
}

func (d duesStore) Stats(context.Context) (models.CollectionStats, error) {
	now := d.store.now()
	var stats models.CollectionStats
	for _, a := range d.store.Overdue.Snapshot() {
		stats.TotalOverdue += a.OverdueAmount
		stats.OverdueCount++
		if a.DaysPastDue > 90 {
			stats.NPACount++
		}
		if a.LastContacted != nil && sameDay(*a.LastContacted, now) {
			stats.ContactedToday++
		}
	}
	return stats, nil
}

func (d duesStore) Overdue(ctx context.Context, params backend.ListParams) ([]models.OverdueAccount, error) {
	return d.store.Overdue.List(ctx, params)
}

func (d duesStore) LogCall(_ context.Context, loanID, remarks string) error {
	if strings.TrimSpace(remarks) == "" {
		return backend.NotValid("call remarks are empty")
	}
	now := d.store.now()
	_, err := d.store.Overdue.Mutate(loanID, func(a *models.OverdueAccount) error {
		a.Remarks = append(a.Remarks, models.CallNote{Notes: remarks, LoggedAt: now})
		a.LastContacted = &now
		return nil
	})
	return err
}

func (d duesStore) SendNotice(_ context.Context, loanID, noticeType string) error {
	if strings.TrimSpace(noticeType) == "" {
		return backend.NotValid("notice type is empty")
	}
	_, err := d.store.Overdue.Mutate(loanID, func(a *models.OverdueAccount) error {
		a.Notices = append(a.Notices, noticeType)
		return nil
	})
	return err
}

type profileStore struct {
	store *Store
}

func (p profileStore) Get(context.Context) (models.Profile, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	return p.store.profile, nil
}

func (p profileStore) Update(_ context.Context, patch backend.Patch) (models.Profile, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	updated, err := applyPatch(p.store.profile, patch)
	if err != nil {
		return models.Profile{}, backend.NotValid("profile patch: %v", err)
	}
	p.store.profile = updated
	return updated, nil
}

type signupStore struct {
	store *Store
}

// Submit queues a tenant application and raises an onboarding notification.
func (s signupStore) Submit(ctx context.Context, req models.SignupRequest) (string, error) {
	app, err := s.store.Applications.Create(ctx, models.TenantApplication{Request: req})
	if err != nil {
		return "", err
	}
	if _, err := s.store.Notifications.Create(ctx, models.Notification{
		Title:   "New Tenant Signup",
		Message: fmt.Sprintf("%s applied for onboarding.", req.BusinessName),
	}); err != nil {
		return "", err
	}
	return app.ApplicationID, nil
}

type dashboardStore struct {
	store *Store
}

func (d dashboardStore) Fetch(context.Context) (models.Dashboard, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	out := d.store.dashboard
	out.Charts.MonthlyDisbursement = append([]models.MonthlyAmount{}, out.Charts.MonthlyDisbursement...)
	out.Charts.LoanStatusDistribution = append([]models.StatusCount{}, out.Charts.LoanStatusDistribution...)
	out.Charts.RecentActivity = append([]models.Activity{}, out.Charts.RecentActivity...)
	return out, nil
}

// Export produces no artifact in mock mode.
func (d dashboardStore) Export(context.Context) (string, error) {
	return "", nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
