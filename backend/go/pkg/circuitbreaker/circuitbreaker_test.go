package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

func TestBreaker_TripsAndRecovers(t *testing.T) {
	now := time.Unix(0, 0)
	b := New(2, 1, time.Minute)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.Execute(ctx, fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: expected errBoom, got %v", i, err)
		}
	}
	if b.State() != Open {
		t.Fatalf("expected open after 2 failures, got %s", b.State())
	}

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected ErrCircuitOpen without calling fn, got %v (called=%v)", err, called)
	}

	now = now.Add(time.Minute)
	if b.State() != HalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", b.State())
	}
	if err := b.Execute(ctx, ok); err != nil {
		t.Fatalf("trial call error = %v", err)
	}
	if b.State() != Closed {
		t.Errorf("expected closed after successful trial, got %s", b.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	b := New(1, 2, time.Second)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	now = now.Add(2 * time.Second)
	_ = b.Execute(ctx, fail)
	if b.State() != Open {
		t.Errorf("expected open after half-open failure, got %s", b.State())
	}
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b := New(2, 1, time.Minute)
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, ok)
	_ = b.Execute(ctx, fail)
	if b.State() != Closed {
		t.Errorf("non-consecutive failures should not trip, got %s", b.State())
	}
}

func TestBreaker_CancellationNotCounted(t *testing.T) {
	b := New(1, 1, time.Minute)
	_ = b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	if b.State() != Closed {
		t.Errorf("cancellation should not trip the breaker, got %s", b.State())
	}
}
