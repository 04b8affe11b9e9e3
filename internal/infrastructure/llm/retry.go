package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/encuestaia/backend/internal/infrastructure/log"
)

// retryProvider 为 Provider 增加超时与重试
type retryProvider struct {
	inner      Provider
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// WithRetry 包装 Provider：请求级超时，失败后按指数退避重试 maxRetries 次
// 只重试 ErrUnavailable 与 ErrEmptyResponse，4xx、取消和超时直接返回
func WithRetry(inner Provider, maxRetries int, backoff time.Duration) Provider {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryProvider{
		inner:      inner,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     log.NewModuleLogger("llm", "retry"),
	}
}

func (r *retryProvider) Name() string  { return r.inner.Name() }
func (r *retryProvider) Model() string { return r.inner.Model() }

func (r *retryProvider) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := time.Now()
	var lastErr error
	attempts := 1 + r.maxRetries

	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := r.backoff << (i - 1)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			case <-time.After(delay):
			}
		}

		c, err := r.inner.Complete(ctx, req)
		if err == nil {
			c.LatencyMs = time.Since(start).Milliseconds()
			return c, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			break
		}

		r.logger.Warn("LLM call failed",
			"provider", r.inner.Name(),
			"task", req.Task,
			"attempt", i+1,
			"max_attempts", attempts,
			"error", err,
		)
	}

	if ctx.Err() != nil && !errors.Is(lastErr, ErrTimeout) {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, lastErr)
	}
	if attempts > 1 && retryable(lastErr) {
		return nil, fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
	}
	return nil, lastErr
}

// unconfiguredProvider 未配置 API Key 时使用，所有调用返回 ErrNotConfigured
type unconfiguredProvider struct {
	name  string
	model string
}

func (p *unconfiguredProvider) Name() string  { return p.name }
func (p *unconfiguredProvider) Model() string { return p.model }

func (p *unconfiguredProvider) Complete(context.Context, ChatRequest) (*Completion, error) {
	return nil, fmt.Errorf("%w: missing API key for %s", ErrNotConfigured, p.name)
}
