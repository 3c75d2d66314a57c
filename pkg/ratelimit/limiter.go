// Package ratelimit provides the token bucket limiter that throttles
// upstream scraping API calls.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// TokenBucket implements a token bucket rate limiter with proportional refill
type TokenBucket struct {
	capacity   float64
	tokens     float64
	ratePerSec float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a rate limiter allowing capacity requests per period
func NewTokenBucket(capacity int, period time.Duration) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if period <= 0 {
		period = time.Minute
	}
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		ratePerSec: float64(capacity) / period.Seconds(),
		lastRefill: time.Now(),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		deficit := 1 - tb.tokens
		delay := time.Duration(deficit / tb.ratePerSec * float64(time.Second))
		tb.mu.Unlock()

		if delay < 10*time.Millisecond {
			delay = 10 * time.Millisecond
		}
		time.Sleep(delay)
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill adds tokens proportional to elapsed time, capped at capacity
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tb.lastRefill = now

	tb.tokens += elapsed.Seconds() * tb.ratePerSec
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}
