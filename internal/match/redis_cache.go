package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pricehunt-engine/internal/domain"
)

const redisKeyPrefix = "pricehunt:match:"

// RedisCache stores analyses as JSON under pricehunt:match:<hash>. SETNX keeps
// entries immutable; they never expire.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache parses redisURL and verifies connectivity.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisCache{rdb: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, hash string) (domain.MatchAnalysis, bool, error) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.MatchAnalysis{}, false, nil
	}
	if err != nil {
		return domain.MatchAnalysis{}, false, err
	}
	var m domain.MatchAnalysis
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.MatchAnalysis{}, false, fmt.Errorf("decode cached analysis: %w", err)
	}
	return m, true, nil
}

func (c *RedisCache) Put(ctx context.Context, hash string, m domain.MatchAnalysis) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.rdb.SetNX(ctx, redisKeyPrefix+hash, b, 0).Err()
}

func (c *RedisCache) Close() error { return c.rdb.Close() }
