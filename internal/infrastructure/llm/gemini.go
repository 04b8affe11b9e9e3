package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider 基于 google.golang.org/genai 的 Gemini 提供商
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider 创建 Gemini 提供商；baseURL 为空时使用官方地址
func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name 实现 Provider 接口
func (p *GeminiProvider) Name() string { return "gemini" }

// Model 实现 Provider 接口
func (p *GeminiProvider) Model() string { return p.model }

// Complete 调用 GenerateContent
func (p *GeminiProvider) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	start := time.Now()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.User), cfg)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && !serverSide(apiErr.Code) {
			return nil, fmt.Errorf("gemini returned status %d: %w", apiErr.Code, err)
		}
		return nil, fmt.Errorf("%w: gemini: %v", ErrUnavailable, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	c := &Completion{
		Text:      text,
		Provider:  p.Name(),
		Model:     p.model,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		c.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		c.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return c, nil
}

var _ Provider = (*GeminiProvider)(nil)
