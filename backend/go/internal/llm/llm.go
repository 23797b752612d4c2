package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/pkg/circuitbreaker"
)

// Options 定义了单次补全的生成参数。
type Options struct {
	MaxTokens   int     // 最多生成的 token 数
	Temperature float64 // 采样温度
}

// Completer 是所有文本补全后端必须实现的接口：输入提示词，返回生成的文本。
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// NewCompleter 是一个工厂函数，根据配置创建对应提供商的补全客户端。
func NewCompleter(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey, cfg.BaseURL)
	case "huggingface":
		return NewHuggingFace(cfg.Model, cfg.APIKey, cfg.BaseURL)
	case "gemini":
		return NewGemini(ctx, cfg.Model, cfg.APIKey)
	default:
		return nil, fmt.Errorf("不支持的 LLM 提供商: %s", cfg.Provider)
	}
}

// Guarded 用熔断器包装一个 Completer，后端连续失败时快速返回 circuitbreaker.ErrCircuitOpen。
type Guarded struct {
	next    Completer
	breaker *circuitbreaker.Breaker
}

// NewGuarded 创建一个带熔断的 Completer。
func NewGuarded(next Completer, cfg config.CircuitBreakerConfig) *Guarded {
	return &Guarded{
		next:    next,
		breaker: circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, config.Duration(cfg.Timeout, time.Minute)),
	}
}

// Complete 在熔断器允许时调用下游后端。
func (g *Guarded) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	var out string
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.next.Complete(ctx, prompt, opts)
		return err
	})
	return out, err
}

// State 返回熔断器当前状态。
func (g *Guarded) State() circuitbreaker.State {
	return g.breaker.State()
}

// Close 释放底层客户端持有的资源 (如果有)。
func Close(c Completer) error {
	switch v := c.(type) {
	case *Guarded:
		return Close(v.next)
	case interface{ Close() error }:
		return v.Close()
	}
	return nil
}
