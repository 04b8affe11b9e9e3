package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/encuestaia/backend/internal/infrastructure/log"
)

// defaultBackoff 首次重试前的等待时间
const defaultBackoff = 500 * time.Millisecond

// NewProvider 按配置创建 Provider（已包装重试）
// 缺少 API Key 时只记录警告，返回的 Provider 在调用时报 ErrNotConfigured
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	logger := log.NewModuleLogger("llm", "factory")

	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case config.ProviderDeepSeek, config.ProviderOpenAI:
		if cfg.APIKey != "" {
			p = NewClient(cfg.Provider, cfg.BaseURL, cfg.APIKey, cfg.Model)
		}
	case config.ProviderGemini:
		p, err = NewGeminiProvider(context.Background(), cfg.APIKey, cfg.Model, cfg.BaseURL)
	case config.ProviderAnthropic:
		p, err = NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}

	if errors.Is(err, ErrNotConfigured) || (err == nil && p == nil) {
		logger.Warn("LLM API key not configured, AI endpoints will fail",
			"provider", cfg.Provider,
			"model", cfg.Model,
		)
		return &unconfiguredProvider{name: cfg.Provider, model: cfg.Model}, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info("LLM provider configured",
		"provider", p.Name(),
		"model", p.Model(),
		"max_retries", cfg.MaxRetries,
	)
	return WithRetry(p, cfg.MaxRetries, defaultBackoff), nil
}

// RequestFor 按任务配置填充请求参数
func RequestFor(cfg *config.LLMConfig, task TaskType, system, user string, jsonOutput bool) ChatRequest {
	tc := cfg.Question
	if task == TaskReport {
		tc = cfg.Report
	}
	timeoutMs := tc.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = cfg.TimeoutMs
	}
	return ChatRequest{
		Task:        task,
		System:      system,
		User:        user,
		Temperature: tc.Temperature,
		MaxTokens:   tc.MaxTokens,
		JSON:        jsonOutput,
		Timeout:     time.Duration(timeoutMs) * time.Millisecond,
	}
}
