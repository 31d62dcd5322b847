package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"

	"losadmin/internal/models"
	"losadmin/internal/resources"
)

// scriptedStatus replays results in order and repeats the last one.
type scriptedStatus struct {
	results []resources.Result[string]
	calls   int
}

func (s *scriptedStatus) Status(context.Context, string) (resources.Result[string], error) {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i], nil
}

func TestWaitForReportCompletes(t *testing.T) {
	src := &scriptedStatus{results: []resources.Result[string]{
		{OK: true, Data: models.JobProcessing},
		{OK: true, Data: models.JobProcessing},
		{OK: true, Data: models.JobCompleted},
	}}
	if err := waitForReport(context.Background(), src, "job-1", time.Millisecond); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("expected 3 polls, got %d", src.calls)
	}
}

func TestWaitForReportStopsOnFailedStatus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	src := &scriptedStatus{results: []resources.Result[string]{
		{OK: true, Data: models.JobProcessing},
		{OK: false},
	}}
	start := time.Now()
	err := waitForReport(ctx, src, "job-404", time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "report job-404 failed") {
		t.Fatalf("expected failure, got %v", err)
	}
	if errors.IsTimeout(err) {
		t.Fatalf("failed status waited out the deadline: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("failure took %s to surface", elapsed)
	}
	if src.calls != 2 {
		t.Fatalf("expected polling to stop at the failed status, got %d calls", src.calls)
	}
}

func TestWaitForReportTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	src := &scriptedStatus{results: []resources.Result[string]{{OK: true, Data: models.JobProcessing}}}
	if err := waitForReport(ctx, src, "job-slow", time.Millisecond); !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}
