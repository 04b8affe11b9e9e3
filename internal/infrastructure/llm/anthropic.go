package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider 基于官方 SDK 的 Anthropic 提供商
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider 创建 Anthropic 提供商；baseURL 为空时使用官方地址
func NewAnthropicProvider(apiKey, model, baseURL string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// 重试由 retryProvider 统一处理
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Name 实现 Provider 接口
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Model 实现 Provider 接口
func (p *AnthropicProvider) Model() string { return p.model }

// Complete 调用 Messages API
func (p *AnthropicProvider) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && !serverSide(apiErr.StatusCode) {
			return nil, fmt.Errorf("anthropic returned status %d: %w", apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: anthropic: %v", ErrUnavailable, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return nil, ErrEmptyResponse
	}

	return &Completion{
		Text:             b.String(),
		Provider:         p.Name(),
		Model:            string(resp.Model),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		LatencyMs:        time.Since(start).Milliseconds(),
	}, nil
}

var _ Provider = (*AnthropicProvider)(nil)
