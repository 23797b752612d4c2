package ratelimiter

import (
	"sync"
	"time"
)

// TokenBucket refills at a fixed rate and allows bursts up to its capacity.
type TokenBucket struct {
	rate     float64 // tokens per second
	capacity float64
	tokens   float64
	last     time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewTokenBucket creates a full bucket.
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{
		rate:     rate,
		capacity: float64(capacity),
		tokens:   float64(capacity),
		last:     time.Now(),
		now:      time.Now,
	}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.last); elapsed > 0 {
		tb.tokens += elapsed.Seconds() * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.last = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}
