package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window per-client-IP request limiter.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	counts  map[string]int
	resetAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing max requests per window per IP.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window: window,
		max:    max,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Allow reports whether a request from the given client may proceed.
func (l *RateLimiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.resetAt) {
		l.counts = make(map[string]int)
		l.resetAt = now.Add(l.window)
	}

	l.counts[clientIP]++
	return l.counts[clientIP] <= l.max
}

// Handler returns the Gin middleware for this limiter.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
