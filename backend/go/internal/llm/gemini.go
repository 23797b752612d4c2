package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个用于 Gemini API 的补全客户端。
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini 使用 API 密钥创建 Gemini 客户端。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if model == "" {
		return nil, fmt.Errorf("gemini 需要指定模型名称")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("创建 gemini 客户端失败: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Complete 发起一次无会话状态的生成请求，拼接第一个候选的所有文本部分。
func (g *Gemini) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetMaxOutputTokens(int32(opts.MaxTokens))
	m.SetTemperature(float32(opts.Temperature))

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini 生成失败: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini 未返回候选结果")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close 关闭底层 gRPC 连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}
