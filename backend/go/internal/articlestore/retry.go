package articlestore

import (
	"context"
	"time"

	"newsgraph/backend/go/internal/models"
)

// RetryPolicy 定义了写入失败后的重试策略。
type RetryPolicy struct {
	Attempts int           // 总尝试次数，至少为 1
	Backoff  time.Duration // 首次重试前的等待时间，之后每次翻倍
	MaxWait  time.Duration // 单次等待上限
}

// DefaultRetry 是文章写入的默认重试策略。
var DefaultRetry = RetryPolicy{Attempts: 3, Backoff: 200 * time.Millisecond, MaxWait: 2 * time.Second}

// InsertWithRetry 在 Insert 失败时按指数退避重试，返回最后一次的错误。
func InsertWithRetry(ctx context.Context, s Store, article *models.Article, policy RetryPolicy) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := policy.Backoff

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if last = s.Insert(ctx, article); last == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if policy.MaxWait > 0 && backoff > policy.MaxWait {
			backoff = policy.MaxWait
		}
	}
	return last
}
