package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"losadmin/internal/backend"
	"losadmin/internal/httpclient"
	"losadmin/internal/models"
	"losadmin/internal/retry"
	"losadmin/internal/utils/logger"
)

func init() {
	logger.SetLevel(logger.LevelSilent)
}

type fakeCreds struct {
	token        string
	unauthorized int32
}

func (f *fakeCreds) AccessToken(context.Context) string { return f.token }
func (f *fakeCreds) Unauthorized(context.Context)       { atomic.AddInt32(&f.unauthorized, 1) }

func newTestBackend(t *testing.T, h http.Handler) (*Backend, *fakeCreds) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	creds := &fakeCreds{token: "access-1"}
	client, err := httpclient.New(srv.URL, time.Second, creds)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return New(client, retry.Policy{Delay: time.Millisecond}), creds
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRolesAreMappedFromRoleMasters(t *testing.T) {
	b, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pathRoles || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 7, "name": "Credit Manager", "description": "Manages loan approvals"},
			{"id": "role-x", "name": "Analyst", "description": ""},
		})
	}))

	roles, err := b.Roles().List(context.Background(), backend.ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roles) != 2 || roles[0].RoleID != "7" || roles[0].RoleName != "Credit Manager" || roles[1].RoleID != "role-x" {
		t.Fatalf("unexpected roles %+v", roles)
	}
}

func TestProductsAreMappedFromLoanProducts(t *testing.T) {
	var created map[string]interface{}
	b, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []map[string]interface{}{{"id": 1, "name": "Personal Loan", "loan_type": "UNSECURED"}})
		case http.MethodPost:
			_ = json.NewDecoder(r.Body).Decode(&created)
			writeJSON(w, http.StatusCreated, map[string]interface{}{"id": 2, "name": created["name"], "loan_type": created["loan_type"]})
		}
	}))

	products, err := b.Products().List(context.Background(), backend.ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := models.LoanProduct{ProductID: "1", BusinessName: "All", TypeOfLoan: "Personal Loan", Subcategory: "UNSECURED", Status: models.StatusActive}
	if len(products) != 1 || products[0] != want {
		t.Fatalf("unexpected products %+v", products)
	}

	p, err := b.Products().Create(context.Background(), models.LoanProduct{TypeOfLoan: "Gold Loan", Subcategory: "SECURED"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created["name"] != "Gold Loan" || created["loan_type"] != "SECURED" {
		t.Fatalf("unexpected wire body %v", created)
	}
	if p.ProductID != "2" || p.TypeOfLoan != "Gold Loan" {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestTransientFailuresExhaustToNoResult(t *testing.T) {
	var hits int32
	b, creds := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := b.Tenants().List(context.Background(), backend.ListParams{})
	if !errors.Is(err, retry.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if atomic.LoadInt32(&creds.unauthorized) != 0 {
		t.Fatalf("503 must not end the session")
	}
}

func TestUnauthorizedIsNotRetried(t *testing.T) {
	var hits int32
	b, creds := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	}))

	_, err := b.Loans().Act(context.Background(), "LN001", models.LoanAction{Action: models.ActionApprove})
	if !httpclient.IsUnauthorized(err) {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if h, td := atomic.LoadInt32(&hits), atomic.LoadInt32(&creds.unauthorized); h != 1 || td != 1 {
		t.Fatalf("hits=%d teardowns=%d, want 1/1", h, td)
	}
}

func TestRequestShapes(t *testing.T) {
	type seen struct {
		method, path, query, auth string
		body                      map[string]interface{}
	}
	var (
		mu     sync.Mutex
		latest seen
	)
	b, _ := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		s := seen{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization")}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &s.body)
		}
		mu.Lock()
		latest = s
		mu.Unlock()
		switch r.URL.Path {
		case pathLeads + "lead-1/convert/":
			writeJSON(w, http.StatusOK, map[string]interface{}{"application_id": 41})
		case pathSignup:
			writeJSON(w, http.StatusCreated, map[string]interface{}{"id": "app-1"})
		case pathReports + "job-1/status/":
			writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{})
		}
	}))
	ctx := context.Background()
	last := func() seen {
		mu.Lock()
		defer mu.Unlock()
		return latest
	}

	if _, err := b.Users().List(ctx, backend.ListParams{Search: "amit", RoleID: "role-credit"}); err == nil {
		t.Fatalf("object body decoded as list should fail")
	}
	if last().path != pathUsers || last().query != "role=role-credit&search=amit" || last().auth != "Bearer access-1" {
		t.Fatalf("unexpected list request %+v", last())
	}

	id, err := b.Leads().Convert(ctx, "lead-1")
	if err != nil || id != "41" {
		t.Fatalf("convert: id=%q err=%v", id, err)
	}

	appID, err := b.Signup().Submit(ctx, models.SignupRequest{Email: "a@b.example", BusinessName: "Acme"})
	if err != nil || appID != "app-1" {
		t.Fatalf("signup: id=%q err=%v", appID, err)
	}

	status, err := b.Reports().Status(ctx, "job-1")
	if err != nil || status != models.JobCompleted {
		t.Fatalf("status: %q err=%v", status, err)
	}

	if err := b.Roles().Grant(ctx, "7", nil); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if last().method != http.MethodPut || last().path != pathRoles+"7/permissions/" {
		t.Fatalf("unexpected grant request %+v", last())
	}
	if ids, ok := last().body["permission_ids"].([]interface{}); !ok || len(ids) != 0 {
		t.Fatalf("grant body should carry an empty list, got %v", last().body)
	}

	if _, err := b.Roles().Update(ctx, "7", backend.Patch{"role_name": "Ops", "role_id": "8"}); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if last().body["name"] != "Ops" || len(last().body) != 1 {
		t.Fatalf("role patch not renamed: %v", last().body)
	}

	if err := b.Dues().SendNotice(ctx, "LN005", "LEGAL"); err != nil {
		t.Fatalf("send notice: %v", err)
	}
	if last().path != pathCollections+"LN005/send-notice/" || last().body["type"] != "LEGAL" {
		t.Fatalf("unexpected notice request %+v", last())
	}
}

func TestAuthenticatorMessages(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		ok      bool
		message string
	}{
		{"tokens issued", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"access": "a", "refresh": "r"})
		}, true, ""},
		{"no access token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"refresh": "r"})
		}, false, msgNoToken},
		{"server detail", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		}, false, "No active account found with the given credentials"},
		{"bare failure", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, false, msgInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			client, err := httpclient.New(srv.URL, time.Second, nil)
			if err != nil {
				t.Fatalf("client: %v", err)
			}

			pair, err := NewAuthenticator(client).Authenticate(context.Background(), "admin@los.com", "pw")
			if tt.ok {
				if err != nil || pair.Access != "a" || pair.Refresh != "r" {
					t.Fatalf("pair=%+v err=%v", pair, err)
				}
				return
			}
			var le *backend.LoginError
			if !errors.As(err, &le) || le.Message != tt.message {
				t.Fatalf("expected message %q, got %v", tt.message, err)
			}
		})
	}
}
