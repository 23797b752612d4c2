package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于本地 Ollama 服务的补全客户端。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

// NewOllama 创建一个新的 Ollama 客户端。baseURL 为空时默认为 "http://localhost:11434"。
func NewOllama(model, baseURL string) (*Ollama, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama 需要指定模型名称")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// 超时由调用方的 context 控制，这里只设置一个兜底上限。
	hc := &http.Client{Timeout: 10 * time.Minute}

	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// Complete 以非流式方式生成文本。
func (o *Ollama) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	stream := false
	req := &olla.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"num_predict": opts.MaxTokens,
			"temperature": opts.Temperature,
		},
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, req, func(resp olla.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	return sb.String(), nil
}
