package llm

import (
	"context"
	"errors"
	"testing"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/pkg/circuitbreaker"
)

func configFor(provider string) config.LLMConfig {
	return config.LLMConfig{Provider: provider, Model: "m"}
}

type failingCompleter struct{ calls int }

func (f *failingCompleter) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	f.calls++
	return "", errors.New("backend down")
}

func TestGuarded_OpensAfterFailures(t *testing.T) {
	backend := &failingCompleter{}
	g := NewGuarded(backend, config.CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, Timeout: "1h"})

	for i := 0; i < 2; i++ {
		if _, err := g.Complete(context.Background(), "p", Options{}); err == nil {
			t.Fatal("expected backend error")
		}
	}
	if _, err := g.Complete(context.Background(), "p", Options{}); !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if backend.calls != 2 {
		t.Errorf("backend should not be called while open, calls=%d", backend.calls)
	}
	if g.State() != circuitbreaker.Open {
		t.Errorf("State() = %s, want open", g.State())
	}
}

func TestNewCompleter_Providers(t *testing.T) {
	for _, p := range []string{"ollama", "openai", "huggingface"} {
		c, err := NewCompleter(context.Background(), configFor(p))
		if err != nil || c == nil {
			t.Errorf("NewCompleter(%s) = %v, %v", p, c, err)
		}
		if err := Close(c); err != nil {
			t.Errorf("Close(%s) error = %v", p, err)
		}
	}
}
