package dedup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

func exercise(t *testing.T, s Seen) {
	t.Helper()
	ctx := context.Background()
	link := "https://example.com/" + uuid.NewString()

	first, err := s.MarkIfNew(ctx, link)
	if err != nil || !first {
		t.Fatalf("first MarkIfNew = %v, %v; want true", first, err)
	}
	again, err := s.MarkIfNew(ctx, " "+link+" ")
	if err != nil || again {
		t.Fatalf("second MarkIfNew = %v, %v; want false", again, err)
	}
	if err := s.Forget(ctx, link); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if ok, _ := s.MarkIfNew(ctx, link); !ok {
		t.Error("expected link to be new after Forget")
	}
}

func TestLocalSeen(t *testing.T) {
	s, err := NewLocalSeen(16, time.Hour)
	if err != nil {
		t.Fatalf("NewLocalSeen() error = %v", err)
	}
	exercise(t, s)
}

func TestRedisSeen(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	exercise(t, NewRedisSeen(rdb, "newsgraph:test:", time.Minute))
}
