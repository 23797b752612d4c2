package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/pkg/circuitbreaker"
)

// Client 是一个带熔断保护的 HTTP 客户端，5xx 响应计为失败。
type Client struct {
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

// NewClient 创建客户端；熔断器未启用时直接透传请求。
func NewClient(cfg config.CircuitBreakerConfig, timeout time.Duration) *Client {
	c := &Client{httpClient: &http.Client{Timeout: timeout}}
	if cfg.Enabled {
		c.breaker = circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, config.Duration(cfg.Timeout, time.Minute))
	}
	return c
}

// Do 发送请求。熔断器打开时返回 circuitbreaker.ErrCircuitOpen，不会发出请求。
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	var resp *http.Response
	err := c.breaker.Execute(req.Context(), func(context.Context) error {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("server error: received status code %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return resp, nil
}
