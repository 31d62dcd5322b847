// Package remote implements the backend capabilities against the REST API.
// Every call is retried through the shared policy; authorization failures
// surface immediately after the HTTP client has ended the session.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"losadmin/internal/backend"
	"losadmin/internal/httpclient"
	"losadmin/internal/models"
	"losadmin/internal/retry"
)

// API paths consumed by the console.
const (
	pathToken         = "/api/token/"
	pathTenants       = "/api/v1/tenants/"
	pathBranches      = "/api/v1/tenants/branches/"
	pathSignup        = "/api/v1/tenants/onboarding/register/"
	pathUsers         = "/api/v1/users/"
	pathProfile       = "/api/v1/users/me/"
	pathLogs          = "/api/v1/users/audit-logs/"
	pathRoles         = "/api/v1/adminpanel/role-masters/"
	pathPermissions   = "/api/v1/adminpanel/permissions/"
	pathProducts      = "/api/v1/adminpanel/loan-products/"
	pathSettings      = "/api/v1/adminpanel/settings/"
	pathLoans         = "/api/v1/los/applications/"
	pathNotifications = "/api/v1/communications/communications/"
	pathIntegrations  = "/api/v1/integrations/"
	pathDashboard     = "/api/v1/dashboard/full"
	pathDashExport    = "/api/v1/reports/dashboard-export"
	pathReports       = "/api/v1/reporting/reports/"
	pathLeads         = "/crm/leads/"
	pathCollections   = "/lms/collections/"
)

// Backend implements backend.Backend over HTTP.
type Backend struct {
	client *httpclient.Client
	policy retry.Policy
}

var _ backend.Backend = (*Backend)(nil)

// New returns a backend issuing every call through client with policy.
// A policy without IsFatal treats 401 as fatal.
func New(client *httpclient.Client, policy retry.Policy) *Backend {
	if policy.IsFatal == nil {
		policy.IsFatal = httpclient.IsUnauthorized
	}
	return &Backend{client: client, policy: policy}
}

func (b *Backend) Mode() string { return "live" }

// call performs one request under the retry policy and decodes the body into T.
func call[T any](ctx context.Context, b *Backend, method, path string, body, params interface{}) (T, error) {
	return retry.Do(ctx, b.policy, func(ctx context.Context) (T, error) {
		var out T
		resp, err := b.client.Do(ctx, method, path, body, params)
		if err != nil {
			return out, err
		}
		if err := resp.Decode(&out); err != nil {
			return out, err
		}
		return out, nil
	})
}

// send is call for endpoints whose response body is ignored.
func send(ctx context.Context, b *Backend, method, path string, body interface{}) error {
	_, err := call[json.RawMessage](ctx, b, method, path, body, nil)
	return err
}

func itemPath(collection, id string) string {
	return collection + id + "/"
}

func actionPath(collection, id, action string) string {
	return collection + id + "/" + action + "/"
}

// FlexID accepts identifiers sent as JSON strings or numbers.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", data)
	}
	*f = FlexID(n.String())
	return nil
}

// codec maps a record to and from its wire form. renames translates patch keys.
type codec[T, W any] struct {
	decode  func(W) T
	encode  func(T) W
	renames map[string]string
}

func identity[T any]() codec[T, T] {
	return codec[T, T]{
		decode: func(w T) T { return w },
		encode: func(t T) T { return t },
	}
}

// collection is a conventional REST resource: list and create on the
// collection path, get/patch/delete on <path><id>/.
type collection[T, W any] struct {
	b     *Backend
	path  string
	codec codec[T, W]
}

func newCollection[T any](b *Backend, path string) collection[T, T] {
	return collection[T, T]{b: b, path: path, codec: identity[T]()}
}

func (c collection[T, W]) List(ctx context.Context, params backend.ListParams) ([]T, error) {
	wire, err := call[[]W](ctx, c.b, http.MethodGet, c.path, nil, params)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(wire))
	for i, w := range wire {
		out[i] = c.codec.decode(w)
	}
	return out, nil
}

func (c collection[T, W]) Get(ctx context.Context, id string) (T, error) {
	w, err := call[W](ctx, c.b, http.MethodGet, itemPath(c.path, id), nil, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.codec.decode(w), nil
}

func (c collection[T, W]) Create(ctx context.Context, body T) (T, error) {
	w, err := call[W](ctx, c.b, http.MethodPost, c.path, c.codec.encode(body), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.codec.decode(w), nil
}

func (c collection[T, W]) Update(ctx context.Context, id string, patch backend.Patch) (T, error) {
	w, err := call[W](ctx, c.b, http.MethodPatch, itemPath(c.path, id), c.rename(patch), nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.codec.decode(w), nil
}

func (c collection[T, W]) Delete(ctx context.Context, id string) error {
	return send(ctx, c.b, http.MethodDelete, itemPath(c.path, id), nil)
}

func (c collection[T, W]) rename(patch backend.Patch) backend.Patch {
	if len(c.codec.renames) == 0 {
		return patch
	}
	out := make(backend.Patch, len(patch))
	for k, v := range patch {
		if to, ok := c.codec.renames[k]; ok {
			if to == "" {
				continue
			}
			k = to
		}
		out[k] = v
	}
	return out
}

func (b *Backend) Tenants() backend.Collection[models.Tenant] {
	return newCollection[models.Tenant](b, pathTenants)
}

func (b *Backend) Branches() backend.Collection[models.Branch] {
	return newCollection[models.Branch](b, pathBranches)
}

func (b *Backend) Users() backend.Collection[models.User] {
	return newCollection[models.User](b, pathUsers)
}

func (b *Backend) Logs() backend.Collection[models.LogEntry] {
	return newCollection[models.LogEntry](b, pathLogs)
}

// RoleWire is the role-master payload: {id, name, description}.
type RoleWire struct {
	ID          FlexID `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var roleCodec = codec[models.Role, RoleWire]{
	decode: func(w RoleWire) models.Role {
		return models.Role{RoleID: string(w.ID), RoleName: w.Name, Description: w.Description}
	},
	encode: func(r models.Role) RoleWire {
		return RoleWire{ID: FlexID(r.RoleID), Name: r.RoleName, Description: r.Description}
	},
	renames: map[string]string{"role_name": "name", "role_id": "", "is_system_role": ""},
}

// ProductWire is the loan-product payload: {id, name, loan_type}.
type ProductWire struct {
	ID       FlexID `json:"id,omitempty"`
	Name     string `json:"name"`
	LoanType string `json:"loan_type"`
}

var productCodec = codec[models.LoanProduct, ProductWire]{
	decode: func(w ProductWire) models.LoanProduct {
		return models.LoanProduct{
			ProductID:    string(w.ID),
			BusinessName: "All",
			TypeOfLoan:   w.Name,
			Subcategory:  w.LoanType,
			Status:       models.StatusActive,
		}
	},
	encode: func(p models.LoanProduct) ProductWire {
		return ProductWire{ID: FlexID(p.ProductID), Name: p.TypeOfLoan, LoanType: p.Subcategory}
	},
	renames: map[string]string{
		"type_of_loan":  "name",
		"subcategory":   "loan_type",
		"product_id":    "",
		"business_name": "",
		"status":        "",
	},
}

func (b *Backend) Products() backend.Collection[models.LoanProduct] {
	return collection[models.LoanProduct, ProductWire]{b: b, path: pathProducts, codec: productCodec}
}

type roleStore struct {
	collection[models.Role, RoleWire]
}

func (b *Backend) Roles() backend.RoleStore {
	return roleStore{collection[models.Role, RoleWire]{b: b, path: pathRoles, codec: roleCodec}}
}

func (r roleStore) Permissions(ctx context.Context) ([]models.Permission, error) {
	return call[[]models.Permission](ctx, r.b, http.MethodGet, pathPermissions, nil, nil)
}

func (r roleStore) Granted(ctx context.Context, roleID string) ([]string, error) {
	return call[[]string](ctx, r.b, http.MethodGet, actionPath(pathRoles, roleID, "permissions"), nil, nil)
}

// GrantRequest replaces the granted permission set of a role.
type GrantRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

func (r roleStore) Grant(ctx context.Context, roleID string, permissionIDs []string) error {
	if permissionIDs == nil {
		permissionIDs = []string{}
	}
	return send(ctx, r.b, http.MethodPut, actionPath(pathRoles, roleID, "permissions"), GrantRequest{PermissionIDs: permissionIDs})
}

type loanStore struct {
	collection[models.LoanApplication, models.LoanApplication]
}

func (b *Backend) Loans() backend.LoanStore {
	return loanStore{newCollection[models.LoanApplication](b, pathLoans)}
}

func (l loanStore) Act(ctx context.Context, id string, action models.LoanAction) (models.LoanApplication, error) {
	return call[models.LoanApplication](ctx, l.b, http.MethodPost, actionPath(pathLoans, id, "change-status"), action, nil)
}

type integrationStore struct {
	collection[models.IntegrationConfig, models.IntegrationConfig]
}

func (b *Backend) Integrations() backend.IntegrationStore {
	return integrationStore{newCollection[models.IntegrationConfig](b, pathIntegrations)}
}

func (i integrationStore) Validate(ctx context.Context, id string) (models.IntegrationConfig, error) {
	return call[models.IntegrationConfig](ctx, i.b, http.MethodPost, actionPath(pathIntegrations, id, "validate"), nil, nil)
}

type notificationStore struct {
	b *Backend
}

func (b *Backend) Notifications() backend.NotificationStore { return notificationStore{b} }

func (n notificationStore) List(ctx context.Context) ([]models.Notification, error) {
	return call[[]models.Notification](ctx, n.b, http.MethodGet, pathNotifications, nil, nil)
}

func (n notificationStore) MarkRead(ctx context.Context, id string) error {
	return send(ctx, n.b, http.MethodPost, actionPath(pathNotifications, id, "mark-read"), nil)
}

type settingsStore struct {
	b *Backend
}

func (b *Backend) Settings() backend.SettingsStore { return settingsStore{b} }

func (s settingsStore) List(ctx context.Context) (models.SettingGroups, error) {
	return call[models.SettingGroups](ctx, s.b, http.MethodGet, pathSettings, nil, nil)
}

func (s settingsStore) Update(ctx context.Context, values map[string]string) error {
	return send(ctx, s.b, http.MethodPatch, pathSettings, values)
}

type leadStore struct {
	collection[models.Lead, models.Lead]
}

func (b *Backend) Leads() backend.LeadStore {
	return leadStore{newCollection[models.Lead](b, pathLeads)}
}

// CallRequest carries call notes for leads.
type CallRequest struct {
	Notes string `json:"notes"`
}

func (l leadStore) LogCall(ctx context.Context, id, notes string) error {
	return send(ctx, l.b, http.MethodPost, actionPath(pathLeads, id, "log-call"), CallRequest{Notes: notes})
}

// ConvertResponse names the loan application opened for a converted lead.
type ConvertResponse struct {
	ApplicationID FlexID `json:"application_id"`
}

func (l leadStore) Convert(ctx context.Context, id string) (string, error) {
	res, err := call[ConvertResponse](ctx, l.b, http.MethodPost, actionPath(pathLeads, id, "convert"), nil, nil)
	if err != nil {
		return "", err
	}
	return string(res.ApplicationID), nil
}

type duesStore struct {
	b *Backend
}

func (b *Backend) Dues() backend.Dues { return duesStore{b} }

func (d duesStore) Stats(ctx context.Context) (models.CollectionStats, error) {
	return call[models.CollectionStats](ctx, d.b, http.MethodGet, pathCollections+"stats/", nil, nil)
}

func (d duesStore) Overdue(ctx context.Context, params backend.ListParams) ([]models.OverdueAccount, error) {
	return call[[]models.OverdueAccount](ctx, d.b, http.MethodGet, pathCollections+"queue/", nil, params)
}

// RemarksRequest carries collection call remarks.
type RemarksRequest struct {
	Remarks string `json:"remarks"`
}

func (d duesStore) LogCall(ctx context.Context, loanID, remarks string) error {
	return send(ctx, d.b, http.MethodPost, actionPath(pathCollections, loanID, "log-call"), RemarksRequest{Remarks: remarks})
}

// NoticeRequest names the notice to send.
type NoticeRequest struct {
	Type string `json:"type"`
}

func (d duesStore) SendNotice(ctx context.Context, loanID, noticeType string) error {
	return send(ctx, d.b, http.MethodPost, actionPath(pathCollections, loanID, "send-notice"), NoticeRequest{Type: noticeType})
}

type profileStore struct {
	b *Backend
}

func (b *Backend) Profile() backend.ProfileStore { return profileStore{b} }

func (p profileStore) Get(ctx context.Context) (models.Profile, error) {
	return call[models.Profile](ctx, p.b, http.MethodGet, pathProfile, nil, nil)
}

func (p profileStore) Update(ctx context.Context, patch backend.Patch) (models.Profile, error) {
	return call[models.Profile](ctx, p.b, http.MethodPatch, pathProfile, patch, nil)
}

type signupStore struct {
	b *Backend
}

func (b *Backend) Signup() backend.SignupStore { return signupStore{b} }

// SignupResponse carries the id of the queued tenant application.
type SignupResponse struct {
	ID FlexID `json:"id"`
}

func (s signupStore) Submit(ctx context.Context, req models.SignupRequest) (string, error) {
	res, err := call[SignupResponse](ctx, s.b, http.MethodPost, pathSignup, req, nil)
	if err != nil {
		return "", err
	}
	return string(res.ID), nil
}

type dashboardStore struct {
	b *Backend
}

func (b *Backend) Dashboard() backend.DashboardStore { return dashboardStore{b} }

func (d dashboardStore) Fetch(ctx context.Context) (models.Dashboard, error) {
	return call[models.Dashboard](ctx, d.b, http.MethodGet, pathDashboard, nil, nil)
}

// URLResponse is the {url} body of export and download endpoints.
type URLResponse struct {
	URL string `json:"url"`
}

func (d dashboardStore) Export(ctx context.Context) (string, error) {
	res, err := call[URLResponse](ctx, d.b, http.MethodPost, pathDashExport, nil, nil)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

type reportStore struct {
	b *Backend
}

func (b *Backend) Reports() backend.ReportJobs { return reportStore{b} }

func (r reportStore) Generate(ctx context.Context, req models.ReportRequest) (models.ReportJob, error) {
	return call[models.ReportJob](ctx, r.b, http.MethodPost, pathReports+"generate/", req, nil)
}

// StatusResponse is the body of the job status endpoint.
type StatusResponse struct {
	Status string `json:"status"`
}

func (r reportStore) Status(ctx context.Context, jobID string) (string, error) {
	res, err := call[StatusResponse](ctx, r.b, http.MethodGet, actionPath(pathReports, jobID, "status"), nil, nil)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(res.Status), nil
}

func (r reportStore) Download(ctx context.Context, jobID string) (string, error) {
	res, err := call[URLResponse](ctx, r.b, http.MethodGet, actionPath(pathReports, jobID, "download"), nil, nil)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}
