package local

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("cache: key not found")

// Config holds LocalCache settings.
type Config struct {
	GCInterval time.Duration
}

type entry struct {
	data     string
	expireAt time.Time
	noExpiry bool
}

func (e *entry) expired() bool {
	return !e.noExpiry && time.Now().After(e.expireAt)
}

// ScoredMember mirrors cache.ScoredMember to avoid an import cycle.
type ScoredMember struct {
	Member string
	Score  float64
}

// LocalCache is an in-process cache with Redis-like semantics. It backs
// cooldown keys and damage leaderboards when no Redis is configured.
type LocalCache struct {
	mu         sync.Mutex // serializes SetNX check-and-set
	kv         sync.Map   // key → *entry
	zsets      sync.Map   // key → *zset
	gcInterval time.Duration
	stopGC     chan struct{}
}

// NewCache creates a LocalCache and starts the background GC goroutine.
func NewCache(cfg Config) (*LocalCache, error) {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := &LocalCache{
		gcInterval: interval,
		stopGC:     make(chan struct{}),
	}
	go c.runGC()
	return c, nil
}

// Close stops the background GC goroutine.
func (c *LocalCache) Close() {
	close(c.stopGC)
}

func (c *LocalCache) runGC() {
	ticker := time.NewTicker(c.gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.kv.Range(func(k, v interface{}) bool {
				if e, ok := v.(*entry); ok && e.expired() {
					c.kv.Delete(k)
				}
				return true
			})
		case <-c.stopGC:
			return
		}
	}
}

// ---- KV ----

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.kv.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	e := v.(*entry)
	if e.expired() {
		c.kv.Delete(key)
		return "", ErrNotFound
	}
	return e.data, nil
}

func (c *LocalCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := &entry{data: value}
	if ttl > 0 {
		e.expireAt = time.Now().Add(ttl)
	} else {
		e.noExpiry = true
	}
	c.kv.Store(key, e)
	return nil
}

func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.kv.Delete(k)
	}
	return nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	v, ok := c.kv.Load(key)
	if !ok {
		return false, nil
	}
	e := v.(*entry)
	if e.expired() {
		c.kv.Delete(key)
		return false, nil
	}
	return true, nil
}

func (c *LocalCache) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.kv.Load(key); ok {
		if e, ok2 := v.(*entry); ok2 && !e.expired() {
			return false, nil
		}
	}
	e := &entry{data: value}
	if ttl > 0 {
		e.expireAt = time.Now().Add(ttl)
	} else {
		e.noExpiry = true
	}
	c.kv.Store(key, e)
	return true, nil
}

// TTL reports the remaining lifetime of key. Missing, expired and
// non-expiring keys all report zero.
func (c *LocalCache) TTL(_ context.Context, key string) (time.Duration, error) {
	v, ok := c.kv.Load(key)
	if !ok {
		return 0, nil
	}
	e := v.(*entry)
	if e.noExpiry {
		return 0, nil
	}
	remaining := time.Until(e.expireAt)
	if remaining <= 0 {
		c.kv.Delete(key)
		return 0, nil
	}
	return remaining, nil
}

// ---- ZSet ----

type zEntry struct {
	member string
	score  float64
}

type zset struct {
	mu      sync.Mutex
	entries []zEntry // kept sorted by score descending
}

func (z *zset) resort() {
	sort.SliceStable(z.entries, func(a, b int) bool {
		return z.entries[a].score > z.entries[b].score
	})
}

func (c *LocalCache) getOrCreateZSet(key string) *zset {
	v, _ := c.zsets.LoadOrStore(key, &zset{})
	return v.(*zset)
}

func (c *LocalCache) ZIncrBy(_ context.Context, key string, incr float64, member string) (float64, error) {
	z := c.getOrCreateZSet(key)
	z.mu.Lock()
	defer z.mu.Unlock()
	for i := range z.entries {
		if z.entries[i].member == member {
			z.entries[i].score += incr
			score := z.entries[i].score
			z.resort()
			return score, nil
		}
	}
	z.entries = append(z.entries, zEntry{member: member, score: incr})
	z.resort()
	return incr, nil
}

func (c *LocalCache) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	z := c.getOrCreateZSet(key)
	z.mu.Lock()
	defer z.mu.Unlock()
	n := int64(len(z.entries))
	if start < 0 {
		start = 0
	}
	if start >= n {
		return nil, nil
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	result := make([]ScoredMember, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		result = append(result, ScoredMember{Member: z.entries[i].member, Score: z.entries[i].score})
	}
	return result, nil
}
