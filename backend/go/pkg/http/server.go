package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/pkg/httpmiddleware"
	"newsgraph/backend/go/pkg/logger"
	"newsgraph/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

// Server 封装了 http.Server 和 gin 路由，统一挂载追踪与限流中间件。
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	limiter    gin.HandlerFunc
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// NewServer 根据配置创建服务器。限流器只挂在写接口上，由调用方通过 RateLimit() 取用。
func NewServer(cfg *config.AppConfig, opts ...ServerOption) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), httpmiddleware.Trace(cfg.App.Name))

	srv := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine:  engine,
		limiter: func(c *gin.Context) { c.Next() },
	}

	if rl := cfg.Middleware.RateLimiter; rl.Enabled {
		logger.New(cfg.App.Name, "", "").
			WithField("rate", rl.Rate).WithField("capacity", rl.Capacity).
			Info("启用令牌桶限流")
		srv.limiter = httpmiddleware.RateLimit(ratelimiter.NewTokenBucket(rl.Rate, rl.Capacity))
	}

	for _, opt := range opts {
		opt(srv)
	}
	if srv.httpServer.Addr == "" {
		srv.httpServer.Addr = ":8080"
	}
	return srv
}

// Engine 返回用于注册路由的 gin 引擎。
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// RateLimit 返回配置好的限流中间件；未启用时直接放行。
func (s *Server) RateLimit() gin.HandlerFunc {
	return s.limiter
}

// Handler 返回根处理器，便于测试。
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe 启动 HTTP 服务器，正常关闭时返回 nil。
func (s *Server) ListenAndServe() error {
	if s.httpServer.Addr == "" {
		return fmt.Errorf("server address is not set")
	}
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
