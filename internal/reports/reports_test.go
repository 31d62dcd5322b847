package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"losadmin/internal/backend"
	"losadmin/internal/backend/mock"
	"losadmin/internal/models"
	"losadmin/internal/storage"
	"losadmin/internal/utils/logger"
)

func init() {
	logger.SetLevel(logger.LevelSilent)
}

var epoch = time.Date(2024, 12, 15, 12, 0, 0, 0, time.UTC)

func waitForStatus(t *testing.T, l *Local, id, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := l.Status(context.Background(), id)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if got == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s stayed %s, want %s", id, got, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	clk := testclock.NewClock(epoch)
	store := mock.NewStoreWithClock(clk)
	artifacts := storage.NewMemoryStore("")
	l := NewLocal(store, artifacts, WithClock(clk))

	job, err := l.Generate(ctx, models.ReportRequest{ReportType: models.ReportLoanActivity})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if job.Status != models.JobProcessing || job.JobID == "" {
		t.Fatalf("unexpected job %+v", job)
	}
	if !job.EstimatedCompletionTime.Equal(epoch.Add(DefaultCompletionDelay)) {
		t.Fatalf("unexpected estimate %v", job.EstimatedCompletionTime)
	}

	if _, err := l.Download(ctx, job.JobID); !backend.IsNotValid(err) {
		t.Fatalf("download before completion should fail, got %v", err)
	}

	if err := clk.WaitAdvance(DefaultCompletionDelay, time.Second, 1); err != nil {
		t.Fatalf("advance: %v", err)
	}
	waitForStatus(t, l, job.JobID, models.JobCompleted)

	url, err := l.Download(ctx, job.JobID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	name := strings.TrimPrefix(url, "mem://reports/")
	artifact, ok := artifacts.Open(name)
	if !ok {
		t.Fatalf("artifact %q not stored", url)
	}
	records, err := csv.NewReader(bytes.NewReader(artifact.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 10 || records[0][0] != "loan_id" {
		t.Fatalf("expected header plus 9 loans, got %d rows", len(records))
	}
}

func TestUnknownJob(t *testing.T) {
	l := NewLocal(mock.NewStore(), storage.NewMemoryStore(""))

	if _, err := l.Download(context.Background(), "no-such-job"); !backend.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := l.Status(context.Background(), "no-such-job"); !backend.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := l.Complete(context.Background(), "no-such-job"); !backend.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	l := NewLocal(mock.NewStore(), storage.NewMemoryStore(""))

	tests := []models.ReportRequest{
		{ReportType: "BALANCE_SHEET"},
		{ReportType: models.ReportLoanActivity, DateFrom: "15/12/2024"},
		{ReportType: models.ReportLoanActivity, DateFrom: "2024-12-20", DateTo: "2024-12-01"},
	}
	for _, req := range tests {
		if _, err := l.Generate(context.Background(), req); !backend.IsNotValid(err) {
			t.Fatalf("%+v: expected not valid, got %v", req, err)
		}
	}
}

type failingStore struct{ calls int }

func (f *failingStore) Save(context.Context, string, string, []byte) (string, error) {
	f.calls++
	return "", errors.New("bucket unavailable")
}

type manualScheduler struct{ scheduled []string }

func (m *manualScheduler) Schedule(_ context.Context, jobID string, _ time.Duration) error {
	m.scheduled = append(m.scheduled, jobID)
	return nil
}

func TestCompleteKeepsProcessingWhenArtifactFails(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	fs := &failingStore{}
	l := NewLocal(mock.NewStore(), fs, WithScheduler(sched))

	job, err := l.Generate(ctx, models.ReportRequest{ReportType: models.ReportTenantSummary})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(sched.scheduled) != 1 || sched.scheduled[0] != job.JobID {
		t.Fatalf("job not handed to scheduler: %v", sched.scheduled)
	}
	if err := l.Complete(ctx, job.JobID); err == nil {
		t.Fatalf("expected storage failure")
	}
	status, _ := l.Status(ctx, job.JobID)
	if status != models.JobProcessing {
		t.Fatalf("status %s after failed completion", status)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(mock.NewStore(), storage.NewMemoryStore(""), WithScheduler(&manualScheduler{}))

	job, _ := l.Generate(ctx, models.ReportRequest{ReportType: models.ReportUserActivity})
	if err := l.Complete(ctx, job.JobID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	first, _ := l.Download(ctx, job.JobID)
	if err := l.Complete(ctx, job.JobID); err != nil {
		t.Fatalf("second complete: %v", err)
	}
	second, _ := l.Download(ctx, job.JobID)
	if first != second {
		t.Fatalf("url changed on repeated completion: %q vs %q", first, second)
	}
}

func TestRenderFilters(t *testing.T) {
	clk := testclock.NewClock(epoch)
	store := mock.NewStoreWithClock(clk)

	tests := []struct {
		name string
		req  models.ReportRequest
		rows int
	}{
		{"loans for one tenant", models.ReportRequest{ReportType: models.ReportLoanActivity, TenantID: "tenant-002"}, 2},
		{"loans applied in the last three days", models.ReportRequest{ReportType: models.ReportLoanActivity, DateFrom: "2024-12-12", DateTo: "2024-12-15"}, 3},
		{"tenants created in 2024", models.ReportRequest{ReportType: models.ReportTenantSummary, DateFrom: "2024-01-01"}, 1},
		{"all tenants", models.ReportRequest{ReportType: models.ReportTenantSummary}, 3},
		{"activity for tenant-001", models.ReportRequest{ReportType: models.ReportUserActivity, TenantID: "tenant-001"}, 4},
		{"all activity", models.ReportRequest{ReportType: models.ReportUserActivity}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Render(store, tt.req)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(records)-1 != tt.rows {
				t.Fatalf("expected %d rows, got %d", tt.rows, len(records)-1)
			}
		})
	}
}
