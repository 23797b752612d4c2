package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HuggingFace 是一个用于 Hugging Face Inference API (以及兼容的 TGI 服务) 的补全客户端。
type HuggingFace struct {
	client  *http.Client // HTTP 客户端实例。
	model   string       // 要使用的模型名称。
	apiKey  string       // Hugging Face API 密钥。
	baseURL string       // Inference API 的基准 URL。
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

// NewHuggingFace 创建一个新的 HuggingFace 客户端。
// baseURL 为空时默认为 "https://api-inference.huggingface.co/models/"。
func NewHuggingFace(model, apiKey, baseURL string) (*HuggingFace, error) {
	if model == "" {
		return nil, fmt.Errorf("huggingface 需要指定模型名称")
	}
	if baseURL == "" {
		baseURL = "https://api-inference.huggingface.co/models/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &HuggingFace{
		client:  &http.Client{},
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
	}, nil
}

// Complete 调用 text-generation 接口。服务端被要求只返回新生成的部分。
func (h *HuggingFace) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   opts.MaxTokens,
			Temperature:    opts.Temperature,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+h.model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("huggingface returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("no generated text returned")
	}
	return out[0].GeneratedText, nil
}
