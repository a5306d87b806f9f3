package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/lib/circuit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const targetsKeyPrefix = "webbrayns:targets:"

// TargetCache keeps parsed target sets in Redis. Keys carry the newest
// modification time of the circuit files, so an edited file is a miss.
// A nil client or a zero TTL disables the cache; Redis failures are logged
// and treated as misses.
type TargetCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewTargetCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *TargetCache {
	return &TargetCache{redis: client, ttl: ttl, logger: logger}
}

func (c *TargetCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

// Key identifies the target set of configPath as of version.
func (c *TargetCache) Key(configPath string, version time.Time) string {
	return fmt.Sprintf("%s%s@%d", targetsKeyPrefix, configPath, version.UnixNano())
}

func (c *TargetCache) Get(ctx context.Context, key string) (*circuit.TargetSet, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("target cache read failed")
		return nil, false
	}

	ts := circuit.NewTargetSet()
	if err := json.Unmarshal(raw, ts); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("dropping corrupted target cache entry")
		c.redis.Del(ctx, key)
		return nil, false
	}
	return ts, true
}

func (c *TargetCache) Set(ctx context.Context, key string, ts *circuit.TargetSet) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(ts)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode target set")
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("target cache write failed")
	}
}
