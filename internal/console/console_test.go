package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/juju/clock/testclock"

	"losadmin/internal/backend"
	"losadmin/internal/backend/mock"
	"losadmin/internal/config"
	"losadmin/internal/models"
	"losadmin/internal/session"
	"losadmin/internal/utils/logger"
)

func init() {
	logger.SetLevel(logger.LevelSilent)
}

func TestMockConsole(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC))

	c, err := New(ctx, config.LoadTestConfig(), WithClock(clk))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	if c.Clients.Mode() != "mock" || c.Store == nil {
		t.Fatalf("expected mock mode")
	}
	if got := c.Guard.Resolve(ctx, session.PageDashboard); got != session.PageLogin {
		t.Fatalf("dashboard before login resolved to %q", got)
	}

	if res := c.Session.Login(ctx, mock.DemoEmail, mock.DemoPassword, false); !res.OK {
		t.Fatalf("demo login rejected: %s", res.Message)
	}
	if got := c.Guard.Resolve(ctx, session.PageLogin); got != session.PageDashboard {
		t.Fatalf("login after login resolved to %q", got)
	}

	res, err := c.Clients.Loans.List(ctx, backend.ListParams{Status: models.LoanPending})
	if err != nil || !res.OK || len(res.Data) == 0 {
		t.Fatalf("loans: %+v %v", res, err)
	}
	for _, loan := range res.Data {
		if loan.Status != models.LoanPending {
			t.Fatalf("status filter ignored: %+v", loan)
		}
	}

	c.Session.Logout(ctx)
	if page, ok := c.Guard.Redirect(); !ok || page != session.PageLogin {
		t.Fatalf("logout should queue a redirect to login, got %q %v", page, ok)
	}
}

func TestRememberedSessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.LoadTestConfig()
	cfg.Session.RememberStore = "redis"
	cfg.Redis.Addr = mr.Addr()

	first, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if res := first.Session.Login(ctx, mock.DemoEmail, mock.DemoPassword, true); !res.OK {
		t.Fatalf("login: %s", res.Message)
	}
	first.Close()

	if !mr.Exists("losadmin:session:mock") {
		t.Fatalf("remembered session not written to redis")
	}

	second, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer second.Close()
	if !second.Session.IsLoggedIn(ctx) {
		t.Fatalf("remembered session lost across restart")
	}

	second.Session.Logout(ctx)
	if mr.Exists("losadmin:session:mock") {
		t.Fatalf("logout left the remembered session behind")
	}
}

func TestMockReportsIgnoreQueueAndStorageSettings(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	clk := testclock.NewClock(time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC))

	cfg := config.LoadTestConfig()
	cfg.Reports.Queue = "asynq"
	cfg.Redis.Addr = mr.Addr()
	cfg.Storage.Provider = "s3"

	c, err := New(ctx, cfg, WithClock(clk))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	job, err := c.Clients.Reports.Generate(ctx, models.ReportRequest{ReportType: models.ReportLoanActivity})
	if err != nil || !job.OK {
		t.Fatalf("generate: %+v %v", job, err)
	}
	if err := clk.WaitAdvance(cfg.Reports.CompletionDelay, time.Second, 1); err != nil {
		t.Fatalf("advance: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		st, _ := c.Clients.Reports.Status(ctx, job.Data.JobID)
		if st.OK && st.Data == models.JobCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}

	dl, err := c.Clients.Reports.Download(ctx, job.Data.JobID)
	if err != nil || !dl.OK || !strings.HasPrefix(dl.Data, "mem://reports/") {
		t.Fatalf("download: %+v %v", dl, err)
	}
	if n := mr.CommandCount(); n != 0 {
		t.Fatalf("mock mode sent %d commands to redis", n)
	}
}

func TestRedisUnreachable(t *testing.T) {
	cfg := config.LoadTestConfig()
	cfg.Session.RememberStore = "redis"
	cfg.Redis.Addr = "127.0.0.1:1"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected an error for an unreachable redis")
	}
}

func TestLiveModeRejectsBadBaseURL(t *testing.T) {
	cfg := config.LoadTestConfig()
	cfg.API.BaseURL = "not a url"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected an error for a relative base url")
	}
}

func TestSessionProfile(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"", "mock"},
		{"https://api.lender.com/", "api.lender.com"},
		{"http://localhost:8000", "localhost:8000"},
	}
	for _, tt := range tests {
		cfg := config.LoadTestConfig()
		cfg.API.BaseURL = tt.base
		if got := sessionProfile(cfg); got != tt.want {
			t.Fatalf("%q: got %q want %q", tt.base, got, tt.want)
		}
	}
}
