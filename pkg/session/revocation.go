package session

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/vastra/pkg/cache"
)

// Revocations remembers logged-out token ids until the token would have
// expired anyway.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewRevocations stores revocations in Redis when the cache has a client,
// and in process memory otherwise.
func NewRevocations(c *cache.Cache) Revocations {
	if c != nil && c.Available() {
		return &redisRevocations{cache: c}
	}
	return NewMemoryRevocations()
}

type redisRevocations struct {
	cache *cache.Cache
}

func (r *redisRevocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, "revoked:"+tokenID, true, ttl)
}

func (r *redisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.cache.Has(ctx, "revoked:"+tokenID)
}

// MemoryRevocations is the single-process fallback.
type MemoryRevocations struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{until: map[string]time.Time{}}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, t := range m.until {
		if now.After(t) {
			delete(m.until, id)
		}
	}
	if until.After(now) {
		m.until[tokenID] = until
	}
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.until[tokenID]
	return ok && time.Now().Before(t), nil
}
