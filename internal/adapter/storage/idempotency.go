package storage

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
)

type RedisIdempotencyGuard struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisIdempotencyGuard(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisIdempotencyGuard {
	if ttl <= 0 {
		ttl = idempotencyKeyTTL
	}
	return &RedisIdempotencyGuard{client: client, keyPrefix: keyPrefix + idempotencyKeyPrefix, ttl: ttl}
}

func (r *RedisIdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.keyPrefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisIdempotencyGuard) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

// MemoryIdempotencyGuard is the single-process counterpart of
// RedisIdempotencyGuard.
type MemoryIdempotencyGuard struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	claims map[string]time.Time
}

func NewMemoryIdempotencyGuard(ttl time.Duration) *MemoryIdempotencyGuard {
	if ttl <= 0 {
		ttl = idempotencyKeyTTL
	}
	return &MemoryIdempotencyGuard{ttl: ttl, now: time.Now, claims: map[string]time.Time{}}
}

func (m *MemoryIdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, expires := range m.claims {
		if !now.Before(expires) {
			delete(m.claims, k)
		}
	}
	if _, ok := m.claims[key]; ok {
		return false, nil
	}
	m.claims[key] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryIdempotencyGuard) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, key)
	return nil
}
