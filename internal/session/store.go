package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is what a tier persists for a logged-in user.
type State struct {
	AccessToken   string
	RefreshToken  string
	Authenticated bool
}

// Store is one persistence tier. Only the Controller touches stores.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
	Clear(ctx context.Context) error
}

// MemoryStore is the session-scoped tier: it lives as long as the process.
type MemoryStore struct {
	mu sync.RWMutex
	st State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st, nil
}

func (m *MemoryStore) Save(_ context.Context, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = State{}
	return nil
}

// Hash fields of a persisted session.
const (
	fieldAccess  = "access_token"
	fieldRefresh = "refresh_token"
	fieldAuth    = "auth"
)

// RedisStore is the "remember me" tier: a hash that expires after ttl.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore keeps the session of profile under losadmin:session:<profile>.
func NewRedisStore(client *redis.Client, profile string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    "losadmin:session:" + profile,
		ttl:    ttl,
	}
}

func (r *RedisStore) Load(ctx context.Context) (State, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return State{}, err
	}
	return State{
		AccessToken:   fields[fieldAccess],
		RefreshToken:  fields[fieldRefresh],
		Authenticated: fields[fieldAuth] == "true",
	}, nil
}

// Save replaces the hash atomically and resets its expiry.
func (r *RedisStore) Save(ctx context.Context, st State) error {
	auth := "false"
	if st.Authenticated {
		auth = "true"
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		pipe.HSet(ctx, r.key,
			fieldAccess, st.AccessToken,
			fieldRefresh, st.RefreshToken,
			fieldAuth, auth,
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	return err
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
