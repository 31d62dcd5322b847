// Package reports runs report jobs for mock mode: a job is accepted as
// PROCESSING, completed after a fixed delay, and its CSV artifact is then
// downloadable. Jobs live as long as the manager; nothing is persisted.
package reports

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"losadmin/internal/backend"
	"losadmin/internal/models"
	"losadmin/internal/obs"
	"losadmin/internal/storage"
	"losadmin/internal/utils/logger"
)

// DefaultCompletionDelay is how long a mock job stays PROCESSING.
const DefaultCompletionDelay = 3 * time.Second

// Source supplies the rows reports are computed from.
type Source interface {
	LoanApplications() []models.LoanApplication
	TenantRecords() []models.Tenant
	LogEntries() []models.LogEntry
}

// Completer finishes a job. Schedulers call it once the delay has elapsed.
type Completer interface {
	Complete(ctx context.Context, jobID string) error
}

// Scheduler arranges for a job to be completed after a delay.
type Scheduler interface {
	Schedule(ctx context.Context, jobID string, after time.Duration) error
}

type job struct {
	id        string
	status    string
	request   models.ReportRequest
	createdAt time.Time
	url       string
}

// Local is the in-process job manager.
type Local struct {
	source    Source
	artifacts storage.ArtifactStore
	clock     clock.Clock
	delay     time.Duration
	scheduler Scheduler
	metrics   *obs.Metrics
	logger    *logger.Logger

	mu   sync.RWMutex
	jobs map[string]*job
}

var (
	_ backend.ReportJobs = (*Local)(nil)
	_ Completer          = (*Local)(nil)
)

type Option func(*Local)

func WithClock(clk clock.Clock) Option {
	return func(l *Local) { l.clock = clk }
}

func WithDelay(d time.Duration) Option {
	return func(l *Local) { l.delay = d }
}

// WithScheduler replaces the default in-process timer.
func WithScheduler(s Scheduler) Option {
	return func(l *Local) { l.scheduler = s }
}

func WithMetrics(m *obs.Metrics) Option {
	return func(l *Local) { l.metrics = m }
}

func NewLocal(source Source, artifacts storage.ArtifactStore, opts ...Option) *Local {
	l := &Local{
		source:    source,
		artifacts: artifacts,
		clock:     clock.WallClock,
		delay:     DefaultCompletionDelay,
		logger:    logger.New("reports"),
		jobs:      make(map[string]*job),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.scheduler == nil {
		l.scheduler = NewClockScheduler(l.clock, l)
	}
	return l
}

// Delay is the completion delay jobs are scheduled with.
func (l *Local) Delay() time.Duration { return l.delay }

// Generate records a PROCESSING job and schedules its completion.
func (l *Local) Generate(ctx context.Context, req models.ReportRequest) (models.ReportJob, error) {
	if err := validateRequest(req); err != nil {
		return models.ReportJob{}, err
	}

	now := l.clock.Now().UTC()
	j := &job{
		id:        uuid.NewString(),
		status:    models.JobProcessing,
		request:   req,
		createdAt: now,
	}

	l.mu.Lock()
	l.jobs[j.id] = j
	l.mu.Unlock()

	if err := l.scheduler.Schedule(ctx, j.id, l.delay); err != nil {
		l.mu.Lock()
		delete(l.jobs, j.id)
		l.mu.Unlock()
		return models.ReportJob{}, l.logger.Error("Failed to schedule report job %s", err, j.id)
	}

	l.metrics.ObserveReport(models.JobProcessing)
	l.logger.Info("📊 Report job %s accepted (%s)", j.id, req.ReportType)

	return models.ReportJob{
		JobID:                   j.id,
		Status:                  models.JobProcessing,
		EstimatedCompletionTime: now.Add(l.delay),
	}, nil
}

func (l *Local) Status(_ context.Context, jobID string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	j, ok := l.jobs[jobID]
	if !ok {
		return "", backend.NotFound("report job", jobID)
	}
	return j.status, nil
}

// Download returns the artifact URL; it fails until the job is COMPLETED.
func (l *Local) Download(_ context.Context, jobID string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	j, ok := l.jobs[jobID]
	if !ok {
		return "", backend.NotFound("report job", jobID)
	}
	if j.status != models.JobCompleted {
		return "", backend.NotValid("report job %s is %s", jobID, strings.ToLower(j.status))
	}
	return j.url, nil
}

// Complete renders the CSV from the current rows and marks the job COMPLETED.
// Completing an already completed job is a no-op. If the artifact cannot be
// saved the job stays PROCESSING and the error is returned to the scheduler.
func (l *Local) Complete(ctx context.Context, jobID string) error {
	l.mu.RLock()
	j, ok := l.jobs[jobID]
	var req models.ReportRequest
	done := false
	if ok {
		req = j.request
		done = j.status == models.JobCompleted
	}
	l.mu.RUnlock()

	if !ok {
		return backend.NotFound("report job", jobID)
	}
	if done {
		return nil
	}

	data, err := Render(l.source, req)
	if err != nil {
		return l.logger.Error("Failed to render report %s", err, jobID)
	}
	name := fmt.Sprintf("%s-%s.csv", strings.ToLower(req.ReportType), jobID)
	url, err := l.artifacts.Save(ctx, name, "text/csv", data)
	if err != nil {
		return l.logger.Error("Failed to store report %s", err, jobID)
	}

	l.mu.Lock()
	if j.status != models.JobCompleted {
		j.status = models.JobCompleted
		j.url = url
	}
	l.mu.Unlock()

	l.metrics.ObserveReport(models.JobCompleted)
	l.logger.Success("Report job %s completed", jobID)
	return nil
}

func validateRequest(req models.ReportRequest) error {
	switch req.ReportType {
	case models.ReportLoanActivity, models.ReportTenantSummary, models.ReportUserActivity:
	default:
		return backend.NotValid("report type %q", req.ReportType)
	}
	if _, _, err := dateRange(req); err != nil {
		return err
	}
	return nil
}

// ClockScheduler completes jobs from a clock timer inside the process.
type ClockScheduler struct {
	clock     clock.Clock
	completer Completer
	logger    *logger.Logger
}

func NewClockScheduler(clk clock.Clock, c Completer) *ClockScheduler {
	return &ClockScheduler{clock: clk, completer: c, logger: logger.New("reports")}
}

func (s *ClockScheduler) Schedule(_ context.Context, jobID string, after time.Duration) error {
	s.clock.AfterFunc(after, func() {
		if err := s.completer.Complete(context.Background(), jobID); err != nil {
			s.logger.Warn("Report job %s did not complete: %v", jobID, err)
		}
	})
	return nil
}
