package openai

import (
	"net/http"

	"github.com/microcrowd/engine/llm/providers"
	"github.com/microcrowd/engine/llm/providers/openaicompat"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openai.com"

// OpenAIProvider 实现 OpenAI LLM 提供者.
// 通过嵌入的 openaicompat.Provider 处理 Chat Completions 协议，
// 只覆盖 OpenAI 专有的请求头（Organization 支持）。
type OpenAIProvider struct {
	*openaicompat.Provider
}

// NewOpenAIProvider 创建新的 OpenAI 提供者实例.
func NewOpenAIProvider(cfg providers.OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	p := &OpenAIProvider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName:  "openai",
			APIKey:        cfg.APIKey,
			BaseURL:       baseURL,
			DefaultModel:  cfg.Model,
			FallbackModel: "gpt-4o-mini",
			Timeout:       cfg.Timeout,
		}, logger),
	}

	// Set custom headers for OpenAI (Organization support)
	p.SetBuildHeaders(func(req *http.Request, apiKey string) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
		if cfg.Organization != "" {
			req.Header.Set("OpenAI-Organization", cfg.Organization)
		}
		req.Header.Set("Content-Type", "application/json")
	})

	return p
}
