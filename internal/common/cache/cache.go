package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"giveaway-offers-backend/internal/platform/redis"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encoded values with a TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CacheService is the Redis-backed Cache.
type CacheService struct {
	redisClient redis.RedisClient
}

func NewCacheService(redisClient redis.RedisClient) *CacheService {
	return &CacheService{
		redisClient: redisClient,
	}
}

func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redisClient.Set(ctx, key, string(data), ttl).Err()
}

func (c *CacheService) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

const memorySweepInterval = time.Minute

// Memory is a process-local Cache for deployments without Redis. Expired
// entries are dropped on Get and by a sweep that Set runs at most once per
// memorySweepInterval.
type Memory struct {
	mu        sync.Mutex
	items     map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

// Len returns the number of stored entries, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	entry, ok := m.items[key]
	if ok && !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(entry.data, dest)
}

// Set stores value; a zero ttl never expires.
func (m *Memory) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	now := m.now()
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) >= memorySweepInterval {
		m.sweep(now)
	}
	m.items[key] = entry
	return nil
}

// caller holds m.mu
func (m *Memory) sweep(now time.Time) {
	for key, entry := range m.items {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.items, key)
		}
	}
	m.lastSweep = now
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}
