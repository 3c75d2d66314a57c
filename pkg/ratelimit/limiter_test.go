package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	// Test initial capacity
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Test exhaustion
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	// Test refill after waiting
	time.Sleep(time.Second + 100*time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	// Test reset
	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestTokenBucketProportionalRefill(t *testing.T) {
	tb := NewTokenBucket(10, time.Second)

	// Drain the bucket
	for i := 0; i < 10; i++ {
		tb.Allow()
	}
	if tb.Allow() {
		t.Error("Expected bucket to be drained")
	}

	// A fraction of the period refills a fraction of the capacity
	time.Sleep(250 * time.Millisecond)
	allowed := 0
	for i := 0; i < 10; i++ {
		if tb.Allow() {
			allowed++
		}
	}
	if allowed == 0 {
		t.Error("Expected partial refill after a fraction of the period")
	}
	if allowed == 10 {
		t.Error("Expected refill to be proportional, not full")
	}
}

func TestTokenBucketWaitBlocks(t *testing.T) {
	tb := NewTokenBucket(1, 100*time.Millisecond)

	tb.Wait() // consumes the initial token

	start := time.Now()
	tb.Wait() // must wait for a refill
	elapsed := time.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("Expected Wait to block for a refill, returned after %v", elapsed)
	}
}

func TestTokenBucketZeroArguments(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	if !tb.Allow() {
		t.Error("Expected a usable limiter from zero arguments")
	}
}
