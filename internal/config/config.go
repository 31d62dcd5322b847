package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the console and the dev server
type Config struct {
	API     APIConfig
	Retry   RetryConfig
	Session SessionConfig
	Redis   RedisConfig
	Reports ReportsConfig
	Storage StorageConfig
	Server  ServerConfig
	JWT     JWTConfig
	Admin   AdminConfig
	Log     LogConfig
}

// APIConfig selects the backend. An empty BaseURL means mock mode.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

type SessionConfig struct {
	// RememberStore is the tier used for "remember me" logins: memory or redis.
	RememberStore string
	TTL           time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

type ReportsConfig struct {
	CompletionDelay time.Duration
	// Queue is timer or asynq; asynq requires Redis.
	Queue string
}

type StorageConfig struct {
	Provider  string // memory, s3
	URLExpiry time.Duration
	S3        S3Config
}

type S3Config struct {
	BucketName string `env:"S3_BUCKET_NAME" required:"true"`
	Endpoint   string `env:"S3_ENDPOINT"`
	Region     string `env:"S3_REGION" required:"true"`
	AccessKey  string `env:"S3_ACCESS_KEY" required:"true"`
	SecretKey  string `env:"S3_SECRET_KEY" required:"true"`
}

type ServerConfig struct {
	Host      string
	Port      int
	PublicURL string
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AdminConfig is the single credential pair accepted by the dev server.
type AdminConfig struct {
	Email    string
	Password string
}

type LogConfig struct {
	Level string
}

// MockMode reports whether no live API base is configured.
func (c *Config) MockMode() bool {
	return strings.TrimSpace(c.API.BaseURL) == ""
}

func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", ""),
			Timeout: getEnvAsDuration("API_TIMEOUT", 30*time.Second),
		},
		Retry: RetryConfig{
			Attempts: getEnvAsInt("RETRY_ATTEMPTS", 3),
			Delay:    getEnvAsDuration("RETRY_DELAY", 500*time.Millisecond),
		},
		Session: SessionConfig{
			RememberStore: getEnv("SESSION_REMEMBER_STORE", "memory"),
			TTL:           getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", getEnv("REDIS_HOST", "localhost"), getEnvAsInt("REDIS_PORT", 6379)),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Reports: ReportsConfig{
			CompletionDelay: getEnvAsDuration("REPORT_COMPLETION_DELAY", 3*time.Second),
			Queue:           getEnv("REPORT_QUEUE", "timer"),
		},
		Storage: StorageConfig{
			Provider:  getEnv("STORAGE_PROVIDER", "memory"),
			URLExpiry: getEnvAsDuration("STORAGE_URL_EXPIRY", time.Hour),
			S3: S3Config{
				BucketName: getEnv("S3_BUCKET_NAME", ""),
				Endpoint:   getEnv("S3_ENDPOINT", ""),
				Region:     getEnv("S3_REGION", ""),
				AccessKey:  getEnv("S3_ACCESS_KEY", ""),
				SecretKey:  getEnv("S3_SECRET_KEY", ""),
			},
		},
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvAsInt("SERVER_PORT", 8000),
			PublicURL: getEnv("PUBLIC_URL", "http://localhost:8000"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key"),
			AccessTTL:  getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@los.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", c.Retry.Attempts)
	}
	switch c.Session.RememberStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_REMEMBER_STORE %q", c.Session.RememberStore)
	}
	switch c.Storage.Provider {
	case "memory", "s3":
	default:
		return fmt.Errorf("unknown STORAGE_PROVIDER %q", c.Storage.Provider)
	}
	switch c.Reports.Queue {
	case "timer", "asynq":
	default:
		return fmt.Errorf("unknown REPORT_QUEUE %q", c.Reports.Queue)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("750ms") or bare milliseconds ("750").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
