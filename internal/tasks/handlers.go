package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"losadmin/internal/backend"
	"losadmin/internal/reports"
	"losadmin/internal/utils/logger"
)

// TaskHandler processes queued tasks.
type TaskHandler struct {
	reports reports.Completer
	logger  *logger.Logger
}

func NewTaskHandler(completer reports.Completer) *TaskHandler {
	return &TaskHandler{
		reports: completer,
		logger:  logger.New("task_handler"),
	}
}

// HandleReportComplete completes the job named in the payload. Unknown jobs
// are not retried: the job table does not outlive the process that made it.
func (h *TaskHandler) HandleReportComplete(ctx context.Context, t *asynq.Task) error {
	var p ReportCompletePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid report payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.reports.Complete(ctx, p.JobID); err != nil {
		if backend.IsNotFound(err) {
			h.logger.Warn("Dropping completion for unknown report job %s", p.JobID)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}
