package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/DocValidator/internal/validator"
)

// RedisVerdictCache is a redis-backed verdict store.
type RedisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisVerdictCache stores verdicts by request hash so identical inputs
// replay the identical verdict without another model call.
func NewRedisVerdictCache(addr, password string, db int, ttl time.Duration, prefix string) (*RedisVerdictCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "doc_verdict"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisVerdictCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *RedisVerdictCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *RedisVerdictCache) Get(ctx context.Context, key string) (*validator.Verdict, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var verdict validator.Verdict
	if err := json.Unmarshal([]byte(val), &verdict); err != nil {
		return nil, false, fmt.Errorf("decode cached verdict: %w", err)
	}
	return &verdict, true, nil
}

func (c *RedisVerdictCache) Set(ctx context.Context, key string, verdict *validator.Verdict) error {
	if c == nil || c.client == nil || verdict == nil {
		return nil
	}
	payload, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}

func (c *RedisVerdictCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
