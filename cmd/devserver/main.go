package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"losadmin/internal/api"
	"losadmin/internal/backend/mock"
	"losadmin/internal/config"
	"losadmin/internal/console"
	"losadmin/internal/handlers"
	"losadmin/internal/obs"
	"losadmin/internal/ratelimit"
	"losadmin/internal/tokens"
	"losadmin/internal/utils/logger"
)

// devserver serves the mock data set over the REST API the console consumes,
// so live mode can be exercised without the real backend.
func main() {

	logger := logger.New("devserver")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setLevel(cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	// Report jobs complete through the configured queue
	store := mock.NewStore()
	publicURL := strings.TrimRight(cfg.Server.PublicURL, "/")
	jobs, artifacts, closers, err := console.NewReportJobs(ctx, cfg, store, publicURL+"/artifacts", clock.WallClock, metrics)
	if err != nil {
		log.Fatalf("Failed to start report jobs: %v", err)
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Failed to stop report worker: %v", err)
			}
		}
	}()

	deps := api.Deps{
		Backend:  mock.New(store, jobs),
		Issuer:   tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		Gatherer: reg,
	}
	if source, ok := artifacts.(handlers.ArtifactSource); ok {
		deps.Artifacts = source
	}

	// Login throttling needs Redis; without it logins are unlimited
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable at %s, login attempts are not limited: %v", cfg.Redis.Addr, err)
		_ = client.Close()
	} else {
		defer client.Close()
		deps.LoginLimiter = ratelimit.NewSlidingWindow(client, "login", ratelimit.Window{Length: time.Minute, MaxAttempts: 5})
		logger.Success("Login attempts limited through Redis at %s", cfg.Redis.Addr)
	}
	pingCancel()

	// Initialize API server
	apiServer, err := api.NewServer(cfg, deps)
	if err != nil {
		log.Fatalf("Failed to create API server: %v", err)
	}
	go func() {
		logger.Success("API server listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			_ = logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown API server
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		_ = logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Server shutdown gracefully")
}

func setLevel(level string) {
	logger.SetLevel(logger.ParseLevel(level))
}
