package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"losadmin/internal/backend"
	"losadmin/internal/utils/logger"
)

func init() {
	logger.SetLevel(logger.LevelSilent)
}

type fakeCompleter struct {
	completed []string
	err       error
}

func (f *fakeCompleter) Complete(_ context.Context, jobID string) error {
	f.completed = append(f.completed, jobID)
	return f.err
}

func reportTask(t *testing.T, jobID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(ReportCompletePayload{JobID: jobID})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return asynq.NewTask(TaskTypeReportComplete, payload)
}

func TestReportCompleteIsRouted(t *testing.T) {
	fc := &fakeCompleter{}
	srv := &Server{handler: NewTaskHandler(fc)}

	if err := srv.Mux().ProcessTask(context.Background(), reportTask(t, "job-1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(fc.completed) != 1 || fc.completed[0] != "job-1" {
		t.Fatalf("unexpected completions %v", fc.completed)
	}
}

func TestReportCompleteRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantErr   bool
		skipRetry bool
	}{
		{"success", nil, false, false},
		{"unknown job is dropped", backend.NotFound("report job", "gone"), true, true},
		{"storage failure is retried", errors.New("bucket unavailable"), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTaskHandler(&fakeCompleter{err: tt.err})
			err := h.HandleReportComplete(context.Background(), reportTask(t, "job-2"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if got := errors.Is(err, asynq.SkipRetry); got != tt.skipRetry {
				t.Fatalf("skip retry = %v, want %v (err %v)", got, tt.skipRetry, err)
			}
		})
	}
}

func TestMalformedPayloadIsNotRetried(t *testing.T) {
	h := NewTaskHandler(&fakeCompleter{})
	err := h.HandleReportComplete(context.Background(), asynq.NewTask(TaskTypeReportComplete, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry, got %v", err)
	}
}
