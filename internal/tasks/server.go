package tasks

import (
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"losadmin/internal/utils/logger"
)

var queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
	QueueLow:      1,
}

// Server handles task processing
type Server struct {
	server  *asynq.Server
	handler *TaskHandler
	logger  *logger.Logger
}

// NewServer creates a new task processing server
func NewServer(opt asynq.RedisConnOpt, handler *TaskHandler, concurrency int) *Server {
	log := logger.New("task_server")
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency:    concurrency,
			Queues:         queues,
			StrictPriority: true,
			Logger:         asynqLogger{log},
		},
	)

	return &Server{
		server:  server,
		handler: handler,
		logger:  log,
	}
}

// Mux returns the handler table the server runs.
func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeReportComplete, s.handler.HandleReportComplete)
	return mux
}

// Start starts the task processing server
func (s *Server) Start() error {
	s.logger.Info("starting task processing server queues %v", queues)

	if err := s.server.Start(s.Mux()); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the task processing server
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}

// asynqLogger routes asynq's own logging through the service logger.
type asynqLogger struct {
	l *logger.Logger
}

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug("%s", fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info("%s", fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn("%s", fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { _ = a.l.Error("asynq", errors.New(fmt.Sprint(args...))) }
func (a asynqLogger) Fatal(args ...interface{}) { _ = a.l.Error("asynq fatal", errors.New(fmt.Sprint(args...))) }
