// Package webhook 把线索数据推送到外部自动化平台（n8n）
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/go-resty/resty/v2"
)

// ErrDisabled 未配置 webhook 地址
var ErrDisabled = errors.New("webhook disabled")

// Client webhook 客户端
type Client struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

// NewClient 创建 webhook 客户端
func NewClient(cfg *config.WebhookConfig) *Client {
	return newClient(cfg, 500*time.Millisecond)
}

func newClient(cfg *config.WebhookConfig, backoff time.Duration) *Client {
	logger := log.NewModuleLogger("webhook", "client")

	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutMs)*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(backoff).
		SetRetryMaxWaitTime(8 * backoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			if r == nil {
				return false
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		}).
		AddRetryHook(func(r *resty.Response, err error) {
			if r == nil || r.Request == nil {
				return
			}
			logger.Debug("Retrying webhook delivery",
				"attempt", r.Request.Attempt,
				"status", r.StatusCode(),
			)
		})

	return &Client{
		client: client,
		url:    cfg.URL,
		logger: logger,
	}
}

// Enabled 是否配置了 webhook 地址
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Send 以 JSON 形式 POST 数据，非 2xx 视为失败
func (c *Client) Send(ctx context.Context, payload any) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	c.logger.Info("Webhook delivered",
		"status", resp.StatusCode(),
		"attempts", resp.Request.Attempt,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
