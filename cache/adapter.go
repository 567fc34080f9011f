package cache

import (
	"context"
	"errors"
	"time"

	"github.com/e9games/creaturebot/cache/local"
	cacheredis "github.com/e9games/creaturebot/cache/redis"
)

// IsNotFound reports whether err means the key does not exist,
// regardless of which backend produced it.
func IsNotFound(err error) bool {
	return errors.Is(err, local.ErrNotFound) || errors.Is(err, cacheredis.ErrNotFound)
}

// Cache defines the KV and leaderboard operations the game uses:
// plain keys with TTLs for attack cooldowns, and sorted sets for the
// per-boss damage leaderboards.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)

	ZIncrBy(ctx context.Context, key string, incr float64, member string) (float64, error)
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)
}

// ScoredMember is one leaderboard entry.
type ScoredMember struct {
	Member string
	Score  float64
}

// Config holds configuration for both Redis and the local cache.
type Config struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
}

// New returns a Cache backed by Redis if RedisAddr is set, otherwise an
// in-process cache with the same semantics.
func New(cfg Config) (Cache, error) {
	if cfg.RedisAddr != "" {
		c, err := cacheredis.NewCache(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return redisAdapter{c}, nil
	}
	c, err := local.NewCache(local.Config{
		GCInterval: cfg.LocalGCInterval,
	})
	if err != nil {
		return nil, err
	}
	return localAdapter{c}, nil
}

// NewLocal returns an in-process Cache regardless of configuration.
// Tests use it directly.
func NewLocal() (Cache, error) {
	c, err := local.NewCache(local.Config{})
	if err != nil {
		return nil, err
	}
	return localAdapter{c}, nil
}

// The backends return their own leaderboard entry types so they stay
// importable from this package. These adapters convert at the boundary.

type localAdapter struct {
	*local.LocalCache
}

func (a localAdapter) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	rows, err := a.LocalCache.ZRevRangeWithScores(ctx, key, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMember, len(rows))
	for i, r := range rows {
		out[i] = ScoredMember{Member: r.Member, Score: r.Score}
	}
	return out, nil
}

type redisAdapter struct {
	*cacheredis.Cache
}

func (a redisAdapter) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	rows, err := a.Cache.ZRevRangeWithScores(ctx, key, start, stop)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMember, len(rows))
	for i, r := range rows {
		out[i] = ScoredMember{Member: r.Member, Score: r.Score}
	}
	return out, nil
}
