// Package storage keeps generated report artifacts and hands out download URLs.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"losadmin/internal/config"
)

// ArtifactStore saves a generated file and returns the URL it can be downloaded from.
type ArtifactStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// New builds the store selected by STORAGE_PROVIDER. baseURL prefixes memory URLs.
func New(ctx context.Context, cfg config.StorageConfig, baseURL string) (ArtifactStore, error) {
	switch cfg.Provider {
	case "", "memory":
		return NewMemoryStore(baseURL), nil
	case "s3":
		return NewS3Store(ctx, cfg.S3, cfg.URLExpiry)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// Artifact is one stored file.
type Artifact struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps artifacts for the lifetime of the process.
type MemoryStore struct {
	baseURL string

	mu        sync.RWMutex
	artifacts map[string]Artifact
}

// NewMemoryStore returns a store whose URLs are baseURL/<name>. An empty
// baseURL yields mem://reports/<name> references.
func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "mem://reports"
	}
	return &MemoryStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		artifacts: make(map[string]Artifact),
	}
}

func (m *MemoryStore) Save(_ context.Context, name, contentType string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[name] = Artifact{ContentType: contentType, Data: append([]byte(nil), data...)}
	return m.baseURL + "/" + name, nil
}

// Open returns the artifact saved under name.
func (m *MemoryStore) Open(name string) (Artifact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[name]
	return a, ok
}
