package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"losadmin/internal/backend"
	"losadmin/internal/backend/mock"
	"losadmin/internal/config"
	"losadmin/internal/console"
	"losadmin/internal/handlers"
	"losadmin/internal/models"
	"losadmin/internal/obs"
	"losadmin/internal/ratelimit"
	"losadmin/internal/resources"
	"losadmin/internal/session"
	"losadmin/internal/tokens"
	"losadmin/internal/utils/logger"
)

func init() {
	logger.SetLevel(logger.LevelSilent)
}

type devEnv struct {
	url    string
	store  *mock.Store
	issuer *tokens.Issuer
}

// newDevServer starts the dev server over a fresh mock data set. tweak may
// adjust the configuration before anything is built.
func newDevServer(t *testing.T, limiter *ratelimit.SlidingWindow, tweak func(*config.Config)) devEnv {
	t.Helper()
	ctx := context.Background()

	cfg := config.LoadTestConfig()
	cfg.Reports.CompletionDelay = 300 * time.Millisecond
	if tweak != nil {
		tweak(cfg)
	}

	ts := httptest.NewUnstartedServer(nil)
	base := "http://" + ts.Listener.Addr().String()

	reg := prometheus.NewRegistry()
	store := mock.NewStore()
	jobs, artifacts, closers, err := console.NewReportJobs(ctx, cfg, store, base+"/artifacts", clock.WallClock, obs.NewMetrics(reg))
	if err != nil {
		t.Fatalf("report jobs: %v", err)
	}
	for _, c := range closers {
		t.Cleanup(func() { _ = c() })
	}
	source, _ := artifacts.(handlers.ArtifactSource)

	issuer := tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	srv, err := NewServer(cfg, Deps{
		Backend:      mock.New(store, jobs),
		Artifacts:    source,
		Issuer:       issuer,
		LoginLimiter: limiter,
		Gatherer:     reg,
	})
	if err != nil {
		t.Fatalf("server: %v", err)
	}

	ts.Config.Handler = srv.Handler()
	ts.Start()
	t.Cleanup(ts.Close)

	return devEnv{url: base, store: store, issuer: issuer}
}

// newLiveConsole points a console at the dev server.
func newLiveConsole(t *testing.T, env devEnv) *console.Console {
	t.Helper()
	cfg := config.LoadTestConfig()
	cfg.API.BaseURL = env.url
	c, err := console.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("console: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func do(t *testing.T, method, url, token string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func adminToken(t *testing.T, env devEnv, role string) string {
	t.Helper()
	pair, err := env.issuer.IssuePair(tokens.Subject{UserID: handlers.AdminUserID, Email: "admin@los.com", Role: role})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return pair.Access
}

func TestConsoleAgainstDevServer(t *testing.T) {
	ctx := context.Background()
	env := newDevServer(t, nil, nil)
	c := newLiveConsole(t, env)

	if c.Clients.Mode() != "live" {
		t.Fatalf("expected live mode, got %q", c.Clients.Mode())
	}

	res := c.Session.Login(ctx, "admin@los.com", "wrong", false)
	if res.OK || res.Message != "No active account found with the given credentials" {
		t.Fatalf("unexpected result for bad password: %+v", res)
	}
	if c.Session.IsLoggedIn(ctx) {
		t.Fatalf("rejected login must not create a session")
	}

	if res := c.Session.Login(ctx, "admin@los.com", "admin", false); !res.OK {
		t.Fatalf("login failed: %+v", res)
	}
	claims, err := c.Session.Claims(ctx)
	if err != nil || claims == nil || claims.Role != models.SuperAdminRole {
		t.Fatalf("unexpected claims %+v %v", claims, err)
	}

	tenants, err := c.Clients.Tenants.List(ctx, backend.ListParams{})
	if err != nil || !tenants.OK || len(tenants.Data) != env.store.Tenants.Len() {
		t.Fatalf("tenants: %+v %v", tenants, err)
	}

	created, err := c.Clients.Tenants.Create(ctx, models.Tenant{CompanyName: "Harbor Finance", Email: "ops@harbor.com"})
	if err != nil || !created.OK || created.Data.TenantID == "" {
		t.Fatalf("create: %+v %v", created, err)
	}
	if _, err := env.store.Tenants.Get(ctx, created.Data.TenantID); err != nil {
		t.Fatalf("created tenant not stored: %v", err)
	}

	roles, err := c.Clients.Roles.List(ctx, backend.ListParams{})
	if err != nil || !roles.OK || len(roles.Data) == 0 {
		t.Fatalf("roles: %+v %v", roles, err)
	}
	for _, r := range roles.Data {
		if r.RoleName == models.SuperAdminRole {
			t.Fatalf("super admin role leaked into listing")
		}
	}

	loan, err := c.Clients.Loans.Act(ctx, "LN001", models.ActionApprove, "")
	if err != nil || !loan.OK || loan.Data.Status != models.LoanApproved {
		t.Fatalf("approve: %+v %v", loan, err)
	}

	c.Session.Logout(ctx)
	if c.Session.IsLoggedIn(ctx) {
		t.Fatalf("still logged in after logout")
	}
	if page := c.Guard.Resolve(ctx, session.PageDashboard); page != session.PageLogin {
		t.Fatalf("guard let %q through without a session", page)
	}
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	ctx := context.Background()
	env := newDevServer(t, nil, nil)
	c := newLiveConsole(t, env)
	if !c.Session.Login(ctx, "admin@los.com", "admin", false).OK {
		t.Fatalf("login failed")
	}

	job, err := c.Clients.Reports.Generate(ctx, models.ReportRequest{ReportType: models.ReportLoanActivity})
	if err != nil || !job.OK || job.Data.Status != models.JobProcessing {
		t.Fatalf("generate: %+v %v", job, err)
	}
	if early, _ := c.Clients.Reports.Download(ctx, job.Data.JobID); early.OK {
		t.Fatalf("download succeeded before completion")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		st, err := c.Clients.Reports.Status(ctx, job.Data.JobID)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if st.OK && st.Data == models.JobCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed, last status %+v", st)
		}
		time.Sleep(50 * time.Millisecond)
	}

	link, err := c.Clients.Reports.Download(ctx, job.Data.JobID)
	if err != nil || !link.OK || !strings.HasPrefix(link.Data, env.url+"/artifacts/") {
		t.Fatalf("download: %+v %v", link, err)
	}

	code, body := do(t, http.MethodGet, link.Data, "", nil)
	if code != http.StatusOK {
		t.Fatalf("artifact: status %d", code)
	}
	if !strings.HasPrefix(string(body), "loan_id,applicant_name,amount") {
		t.Fatalf("unexpected csv header: %q", body)
	}
}

func TestExpiredTokenEndsConsoleSession(t *testing.T) {
	ctx := context.Background()
	env := newDevServer(t, nil, func(cfg *config.Config) {
		cfg.JWT.AccessTTL = -time.Minute
	})
	c := newLiveConsole(t, env)

	if !c.Session.Login(ctx, "admin@los.com", "admin", false).OK {
		t.Fatalf("login failed")
	}

	res, err := c.Clients.Tenants.List(ctx, backend.ListParams{})
	if err != resources.ErrSessionEnded || res.OK {
		t.Fatalf("expected ended session, got %+v %v", res, err)
	}
	if c.Session.IsLoggedIn(ctx) {
		t.Fatalf("401 left the session in place")
	}
	if page, ok := c.Guard.Redirect(); !ok || page != session.PageLogin {
		t.Fatalf("expected redirect to login, got %q %v", page, ok)
	}
}

func TestErrorResponses(t *testing.T) {
	env := newDevServer(t, nil, nil)
	admin := adminToken(t, env, models.SuperAdminRole)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		code   int
	}{
		{"no token", http.MethodGet, "/api/v1/tenants/", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/tenants/", "not-a-jwt", nil, http.StatusUnauthorized},
		{"unknown tenant", http.MethodGet, "/api/v1/tenants/tenant-999/", admin, nil, http.StatusNotFound},
		{"invalid tenant", http.MethodPost, "/api/v1/tenants/", admin, map[string]string{"company_name": "X"}, http.StatusBadRequest},
		{"bad loan action", http.MethodPost, "/api/v1/los/applications/LN001/change-status/", admin, map[string]string{"action": "Archive"}, http.StatusBadRequest},
		{"bad notice type", http.MethodPost, "/lms/collections/LN001/send-notice/", admin, map[string]string{"type": "FAX"}, http.StatusBadRequest},
		{"analyst cannot write", http.MethodPost, "/api/v1/tenants/", adminToken(t, env, "Analyst"), map[string]string{"company_name": "Harbor", "email": "ops@harbor.com"}, http.StatusForbidden},
		{"analyst can read", http.MethodGet, "/api/v1/tenants/", adminToken(t, env, "Analyst"), nil, http.StatusOK},
		{"signup is public", http.MethodPost, "/api/v1/tenants/onboarding/register/", "", map[string]string{"email": "new@lender.com", "business_name": "New Lender"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, tt.method, env.url+tt.path, tt.token, tt.body)
			if code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, code, body)
			}
			if code < http.StatusBadRequest {
				return
			}
			var payload struct {
				Error interface{} `json:"error"`
				Code  int         `json:"code"`
			}
			if err := json.Unmarshal(body, &payload); err != nil || payload.Error == nil || payload.Code != code {
				t.Fatalf("unexpected error body %s (%v)", body, err)
			}
		})
	}
}

func TestValidationErrorsNameFields(t *testing.T) {
	env := newDevServer(t, nil, nil)
	code, body := do(t, http.MethodPost, env.url+"/api/v1/tenants/", adminToken(t, env, models.SuperAdminRole), map[string]string{"company_name": "X"})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	var payload struct {
		Error map[string]string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := payload.Error["email"]; !ok {
		t.Fatalf("missing email error in %v", payload.Error)
	}
	if _, ok := payload.Error["company_name"]; !ok {
		t.Fatalf("missing company_name error in %v", payload.Error)
	}
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	env := newDevServer(t, nil, nil)

	code, body := do(t, http.MethodPost, env.url+"/api/token/", "", map[string]string{"email": "Admin@LOS.com", "password": "admin"})
	if code != http.StatusOK {
		t.Fatalf("login: %d %s", code, body)
	}
	var pair models.TokenPair
	if err := json.Unmarshal(body, &pair); err != nil || pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("bad pair %s (%v)", body, err)
	}

	code, body = do(t, http.MethodPost, env.url+"/api/token/refresh/", "", map[string]string{"refresh": pair.Refresh})
	if code != http.StatusOK {
		t.Fatalf("refresh: %d %s", code, body)
	}
	var next models.TokenPair
	if err := json.Unmarshal(body, &next); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if next.Refresh != pair.Refresh {
		t.Fatalf("refresh token changed")
	}
	if _, err := env.issuer.Parse(next.Access, tokens.TypeAccess); err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}

	// An access token is not a refresh token.
	code, _ = do(t, http.MethodPost, env.url+"/api/token/refresh/", "", map[string]string{"refresh": pair.Access})
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for access token, got %d", code)
	}
}

func TestLoginAttemptsAreLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := ratelimit.NewSlidingWindow(client, "login", ratelimit.Window{Length: time.Minute, MaxAttempts: 2})

	env := newDevServer(t, limiter, nil)
	login := map[string]string{"email": "admin@los.com", "password": "wrong"}

	for i := 0; i < 2; i++ {
		if code, _ := do(t, http.MethodPost, env.url+"/api/token/", "", login); code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, code)
		}
	}
	if code, _ := do(t, http.MethodPost, env.url+"/api/token/", "", login); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	other := map[string]string{"email": "someone@los.com", "password": "wrong"}
	if code, _ := do(t, http.MethodPost, env.url+"/api/token/", "", other); code != http.StatusUnauthorized {
		t.Fatalf("limit should be per email, got %d", code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newDevServer(t, nil, nil)

	code, body := do(t, http.MethodGet, env.url+"/health", "", nil)
	if code != http.StatusOK || !strings.Contains(string(body), `"mode":"mock"`) {
		t.Fatalf("health: %d %s", code, body)
	}

	admin := adminToken(t, env, models.SuperAdminRole)
	if code, body := do(t, http.MethodPost, env.url+"/api/v1/reporting/reports/generate/", admin, map[string]string{"report_type": models.ReportTenantSummary}); code != http.StatusAccepted {
		t.Fatalf("generate: %d %s", code, body)
	}

	code, body = do(t, http.MethodGet, env.url+"/metrics", "", nil)
	if code != http.StatusOK {
		t.Fatalf("metrics: %d", code)
	}
	if !strings.Contains(string(body), `losadmin_report_jobs_total{status="PROCESSING"} 1`) {
		t.Fatalf("report counter missing from metrics:\n%s", body)
	}
}

func TestMissingArtifactIs404(t *testing.T) {
	env := newDevServer(t, nil, nil)
	if code, _ := do(t, http.MethodGet, env.url+"/artifacts/nothing.csv", "", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}
