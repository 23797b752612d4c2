// Package dedup remembers which article links were already processed so that
// a link re-delivered by a feed or a broker is not extracted twice within the
// retention window.
package dedup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsgraph/backend/go/pkg/util"

	"github.com/go-redis/redis/v8"
)

// Seen records processed links.
type Seen interface {
	// MarkIfNew records link and reports true if it had not been seen yet.
	MarkIfNew(ctx context.Context, link string) (bool, error)
	// Forget removes link so that it can be processed again.
	Forget(ctx context.Context, link string) error
}

// RedisSeen keeps one key per link with the retention period as TTL, so the
// set is shared across pipeline instances and survives restarts.
type RedisSeen struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSeen(rdb *redis.Client, prefix string, ttl time.Duration) *RedisSeen {
	return &RedisSeen{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisSeen) key(link string) string {
	return s.prefix + strings.TrimSpace(link)
}

func (s *RedisSeen) MarkIfNew(ctx context.Context, link string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.key(link), time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SETNX failed: %w", err)
	}
	return ok, nil
}

func (s *RedisSeen) Forget(ctx context.Context, link string) error {
	if err := s.rdb.Del(ctx, s.key(link)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}

// LocalSeen is an in-process fallback bounded by capacity and TTL.
type LocalSeen struct {
	cache *util.LRUCache[string, struct{}]
}

func NewLocalSeen(capacity int, ttl time.Duration) (*LocalSeen, error) {
	c, err := util.NewLRU[string, struct{}](capacity, ttl)
	if err != nil {
		return nil, err
	}
	return &LocalSeen{cache: c}, nil
}

func (s *LocalSeen) MarkIfNew(_ context.Context, link string) (bool, error) {
	return s.cache.PutIfAbsent(strings.TrimSpace(link), struct{}{}), nil
}

func (s *LocalSeen) Forget(_ context.Context, link string) error {
	s.cache.Remove(strings.TrimSpace(link))
	return nil
}
