package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"losadmin/internal/config"
	"losadmin/internal/utils/logger"
)

// TaskClient enqueues report completions. It satisfies reports.Scheduler.
type TaskClient struct {
	client *asynq.Client
	logger *logger.Logger
}

// RedisOpt converts the shared Redis settings to asynq's connection option.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(opt asynq.RedisConnOpt) *TaskClient {
	return &TaskClient{
		client: asynq.NewClient(opt),
		logger: logger.New("TASKS"),
	}
}

// Schedule enqueues a completion task that becomes ready after the delay.
// The job id doubles as the task id, so a job is never queued twice.
func (c *TaskClient) Schedule(ctx context.Context, jobID string, after time.Duration) error {
	payload, err := json.Marshal(ReportCompletePayload{JobID: jobID})
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeReportComplete, payload),
		asynq.TaskID(jobID),
		asynq.Queue(QueueDefault),
		asynq.ProcessIn(after),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutShort),
	)
	if err != nil {
		return c.logger.Error("Failed to enqueue report job %s", err, jobID)
	}

	c.logger.Info("⏳ Report job %s queued on %s for %s", jobID, info.Queue, info.NextProcessAt.Format(time.RFC3339))
	return nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
