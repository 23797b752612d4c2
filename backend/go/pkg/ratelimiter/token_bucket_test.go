package ratelimiter

import (
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	now := time.Unix(100, 0)
	tb := NewTokenBucket(2, 3)
	tb.now = func() time.Time { return now }
	tb.last = now

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d within burst was rejected", i)
		}
	}
	if tb.Allow() {
		t.Fatal("expected rejection once the bucket is empty")
	}

	now = now.Add(500 * time.Millisecond)
	if !tb.Allow() {
		t.Error("expected one token after 500ms at 2/s")
	}
	if tb.Allow() {
		t.Error("expected only one refilled token")
	}

	now = now.Add(time.Hour)
	allowed := 0
	for tb.Allow() {
		allowed++
	}
	if allowed != 3 {
		t.Errorf("refill should cap at capacity 3, got %d", allowed)
	}
}
