package neo4j

import (
	"context"
	"fmt"
	"sync"
	"time"

	"newsgraph/backend/go/internal/config"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	instance *Neo4jClient
	once     sync.Once
	initErr  error
)

// Neo4jClient 包含了 Neo4j 驱动实例和相关配置。
type Neo4jClient struct {
	Driver neo4j.DriverWithContext // Neo4j 驱动实例。
	Config *config.Neo4jConfig     // Neo4j 配置。
}

// GetClient 使用单例模式创建并返回 Neo4j 客户端。整个进程只建立一次驱动。
func GetClient(ctx context.Context, cfg *config.Neo4jConfig) (*Neo4jClient, error) {
	once.Do(func() {
		instance, initErr = NewClient(ctx, cfg)
	})
	return instance, initErr
}

// NewClient 创建驱动并验证连通性。验证失败时关闭驱动并返回错误。
func NewClient(ctx context.Context, cfg *config.Neo4jConfig) (*Neo4jClient, error) {
	if cfg.Uri == "" {
		return nil, fmt.Errorf("未配置 Neo4j URI")
	}
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second

	driver, err := neo4j.NewDriverWithContext(cfg.Uri, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		if timeout > 0 {
			c.SocketConnectTimeout = timeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("无法创建 Neo4j 驱动: %w", err)
	}

	verifyCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("无法连接到 Neo4j 数据库: %w", err)
	}

	return &Neo4jClient{Driver: driver, Config: cfg}, nil
}

// Close 关闭与 Neo4j 的连接。
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c == nil || c.Driver == nil {
		return nil
	}
	if err := c.Driver.Close(ctx); err != nil {
		return fmt.Errorf("关闭 Neo4j 驱动失败: %w", err)
	}
	return nil
}

// HealthCheck 检查 Neo4j 连接的健康状况。
func (c *Neo4jClient) HealthCheck(ctx context.Context) error {
	return c.Driver.VerifyConnectivity(ctx)
}

// ExecuteWrite 在一个自动管理的写事务中执行 work。驱动会对瞬时错误自动重试整个事务。
func (c *Neo4jClient) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Config.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("执行 Neo4j 写事务失败: %w", err)
	}
	return result, nil
}

// ExecuteRead 在一个自动管理的读事务中执行 work。
func (c *Neo4jClient) ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.Config.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("执行 Neo4j 读事务失败: %w", err)
	}
	return result, nil
}
