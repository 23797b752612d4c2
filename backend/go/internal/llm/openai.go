package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI 是一个用于 OpenAI 兼容接口的补全客户端。
type OpenAI struct {
	client *openai.Client // OpenAI 客户端实例。
	model  string         // 要使用的模型名称。
}

// NewOpenAI 创建一个新的 OpenAI 客户端。baseURL 非空时指向兼容服务 (例如 vLLM)。
func NewOpenAI(model, apiKey, baseURL string) (*OpenAI, error) {
	if model == "" {
		return nil, fmt.Errorf("openai 需要指定模型名称")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Complete 把提示词作为单条用户消息发送，返回第一个候选的文本。
func (o *OpenAI) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	temperature := float32(opts.Temperature)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: &temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
