package config

import "time"

// LoadTestConfig returns a mock-mode configuration with short delays.
func LoadTestConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 5 * time.Second,
		},
		Retry: RetryConfig{
			Attempts: 3,
			Delay:    time.Millisecond,
		},
		Session: SessionConfig{
			RememberStore: "memory",
			TTL:           time.Hour,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		Reports: ReportsConfig{
			CompletionDelay: 3 * time.Second,
			Queue:           "timer",
		},
		Storage: StorageConfig{
			Provider:  "memory",
			URLExpiry: time.Hour,
		},
		Server: ServerConfig{
			Host:      "localhost",
			Port:      8081,
			PublicURL: "http://localhost:8081",
		},
		JWT: JWTConfig{
			Secret:     "test-secret",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: time.Hour,
		},
		Admin: AdminConfig{
			Email:    "admin@los.com",
			Password: "admin",
		},
		Log: LogConfig{
			Level: "silent",
		},
	}
}
