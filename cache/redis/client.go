package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Cache is the Redis-backed cache. Cooldown keys rely on server-side
// TTLs and leaderboards on sorted sets, so a shared Redis keeps several
// bot instances consistent.
type Cache struct {
	client *goredis.Client
}

// ScoredMember mirrors cache.ScoredMember to avoid an import cycle.
type ScoredMember struct {
	Member string
	Score  float64
}

// NewCache connects to Redis and verifies the connection.
func NewCache(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *Cache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

// TTL reports the remaining lifetime of key. Missing and non-expiring
// keys report zero.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

func (c *Cache) ZIncrBy(ctx context.Context, key string, incr float64, member string) (float64, error) {
	return c.client.ZIncrBy(ctx, key, incr, member).Result()
}

func (c *Cache) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	rows, err := c.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]ScoredMember, len(rows))
	for i, r := range rows {
		member, _ := r.Member.(string)
		out[i] = ScoredMember{Member: member, Score: r.Score}
	}
	return out, nil
}
