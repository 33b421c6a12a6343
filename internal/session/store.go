package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// ErrTokenNotFound marks an empty token slot.
var ErrTokenNotFound = errors.New("no token stored for session")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionTokenKey(sessionID string) string
}

func isNotFound(err error) bool {
	return errors.Is(err, redislib.Nil) || errors.Is(err, ErrTokenNotFound)
}

// MemoryStore is an in-process token store used by tests and single-node
// development setups where Redis is not configured.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStore returns an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Set stores a string value; the TTL is ignored in memory.
func (m *MemoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := value.(string); ok {
		m.data[key] = s
		return nil
	}
	return errors.New("memory store only holds strings")
}

// Get returns the value stored at key, or ErrTokenNotFound.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", ErrTokenNotFound
	}
	return val, nil
}

// Del removes the provided keys.
func (m *MemoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// SessionTokenKey mirrors the Redis key layout so either store can back
// the manager interchangeably.
func (m *MemoryStore) SessionTokenKey(sessionID string) string {
	return strings.Join([]string{"cac", "session", "token", sessionID}, ":")
}
