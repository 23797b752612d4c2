package redis

import (
	"context"
	"fmt"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// NewClient 创建 Redis 客户端并用 Ping 验证连接。
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("未配置 Redis 地址")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("无法连接到 Redis: %w", err)
	}

	logger.New("redis", "", "").WithField("address", cfg.Address).Info("成功连接到 Redis")
	return rdb, nil
}

// HealthCheck 检查 Redis 连接的健康状况。
func HealthCheck(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return fmt.Errorf("redis 客户端未初始化")
	}
	return rdb.Ping(ctx).Err()
}
