package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout = 10 * time.Minute
	limiterSweepEvery  = 5 * time.Minute
)

type clientBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimit enforces a per-client-IP token bucket of r requests per
// second with burst b. Idle buckets are swept so the map stays bounded
// under a churning gateway fleet.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = map[string]*clientBucket{}
	)

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-limiterIdleTimeout)
			mu.Lock()
			for ip, cb := range clients {
				if cb.lastSeen.Before(cutoff) {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	take := func(ip string) bool {
		mu.Lock()
		cb, ok := clients[ip]
		if !ok {
			cb = &clientBucket{bucket: rate.NewLimiter(r, b)}
			clients[ip] = cb
		}
		cb.lastSeen = time.Now()
		mu.Unlock()
		return cb.bucket.Allow()
	}

	return func(c *gin.Context) {
		if !take(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
