// Package console assembles the access layer from configuration: the backend
// strategy, the session controller and the resource clients on top of them.
package console

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"losadmin/internal/backend"
	"losadmin/internal/backend/mock"
	"losadmin/internal/backend/remote"
	"losadmin/internal/config"
	"losadmin/internal/events"
	"losadmin/internal/httpclient"
	"losadmin/internal/obs"
	"losadmin/internal/reports"
	"losadmin/internal/resources"
	"losadmin/internal/retry"
	"losadmin/internal/session"
	"losadmin/internal/storage"
	"losadmin/internal/tasks"
	"losadmin/internal/utils/logger"
)

var log = logger.New("console")

// Console is one configured access layer.
type Console struct {
	Config  *config.Config
	Bus     *events.EventBus
	Session *session.Controller
	Guard   *session.Guard
	Clients *resources.Clients
	Metrics *obs.Metrics

	// Store is the mock data set; nil in live mode.
	Store *mock.Store

	closers []func() error
}

type options struct {
	clock    clock.Clock
	registry prometheus.Registerer
}

type Option func(*options)

// WithClock drives retry waits and report delays.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithRegistry registers the console metrics on reg.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// New builds the console. An empty API base selects the mock backend; the
// choice is not revisited afterwards.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Console, error) {
	o := options{clock: clock.WallClock}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Console{
		Config:  cfg,
		Bus:     events.NewEventBus(),
		Metrics: obs.NewMetrics(o.registry),
	}

	durable, err := c.rememberTier(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ephemeral := session.NewMemoryStore()

	var be backend.Backend
	if cfg.MockMode() {
		be = c.mockBackend(cfg, o.clock)
		auth, err := mock.NewDemoAuthenticator()
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Session = session.NewController(auth, ephemeral, durable, c.Bus)
	} else {
		anonymous, err := httpclient.New(cfg.API.BaseURL, cfg.API.Timeout, nil, httpclient.WithMetrics(c.Metrics))
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Session = session.NewController(remote.NewAuthenticator(anonymous), ephemeral, durable, c.Bus)

		client, err := httpclient.New(cfg.API.BaseURL, cfg.API.Timeout, c.Session, httpclient.WithMetrics(c.Metrics))
		if err != nil {
			c.Close()
			return nil, err
		}
		be = remote.New(client, retry.Policy{
			Attempts: cfg.Retry.Attempts,
			Delay:    cfg.Retry.Delay,
			Clock:    o.clock,
			IsFatal:  httpclient.IsUnauthorized,
			Metrics:  c.Metrics,
		})
	}

	c.Guard = session.NewGuard(c.Session, c.Bus)
	c.Clients = resources.New(be, c.Bus)

	log.Info("Console ready in %s mode", be.Mode())
	return c, nil
}

// rememberTier returns the store used for "remember me" logins.
func (c *Console) rememberTier(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.RememberStore != "redis" {
		return session.NewMemoryStore(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, log.Error("Failed to reach Redis at %s", err, cfg.Redis.Addr)
	}
	c.closers = append(c.closers, client.Close)
	return session.NewRedisStore(client, sessionProfile(cfg), cfg.Session.TTL), nil
}

// sessionProfile keys remembered sessions by API host so mock and live
// sessions never mix.
func sessionProfile(cfg *config.Config) string {
	if cfg.MockMode() {
		return "mock"
	}
	if u, err := url.Parse(cfg.API.BaseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return "live"
}

// mockBackend keeps everything in process: reports complete on the clock and
// artifacts stay in memory whatever REPORT_QUEUE and STORAGE_PROVIDER say.
func (c *Console) mockBackend(cfg *config.Config, clk clock.Clock) backend.Backend {
	c.Store = mock.NewStoreWithClock(clk)
	jobs := reports.NewLocal(c.Store, storage.NewMemoryStore(""),
		reports.WithClock(clk),
		reports.WithDelay(cfg.Reports.CompletionDelay),
		reports.WithMetrics(c.Metrics),
	)
	return mock.New(c.Store, jobs)
}

// NewReportJobs builds the report manager the dev server runs over store.
// Artifact URLs start with artifactBase when memory storage is used. With
// REPORT_QUEUE=asynq completions go through Redis and a worker is started;
// the returned closers stop it.
func NewReportJobs(ctx context.Context, cfg *config.Config, store *mock.Store, artifactBase string, clk clock.Clock, m *obs.Metrics) (*reports.Local, storage.ArtifactStore, []func() error, error) {
	artifacts, err := storage.New(ctx, cfg.Storage, artifactBase)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("report storage: %w", err)
	}

	opts := []reports.Option{
		reports.WithClock(clk),
		reports.WithDelay(cfg.Reports.CompletionDelay),
		reports.WithMetrics(m),
	}
	if cfg.Reports.Queue != "asynq" {
		return reports.NewLocal(store, artifacts, opts...), artifacts, nil, nil
	}

	redisOpt := tasks.RedisOpt(cfg.Redis)
	queue := tasks.NewTaskClient(redisOpt)
	jobs := reports.NewLocal(store, artifacts, append(opts, reports.WithScheduler(queue))...)

	worker := tasks.NewServer(redisOpt, tasks.NewTaskHandler(jobs), 2)
	if err := worker.Start(); err != nil {
		_ = queue.Close()
		return nil, nil, nil, err
	}
	closers := []func() error{
		func() error { worker.Shutdown(); return nil },
		queue.Close,
	}
	return jobs, artifacts, closers, nil
}

// Close releases Redis connections and stops the report worker, if any.
func (c *Console) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
