// Package llm 提供多家大模型的统一调用接口
package llm

import (
	"context"
	"time"
)

// TaskType LLM 任务类型，决定温度、最大 token 和超时
type TaskType string

const (
	TaskQuestion TaskType = "question"
	TaskReport   TaskType = "report"
)

// ChatRequest 一次补全请求
type ChatRequest struct {
	Task        TaskType
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	// JSON 要求模型只输出 JSON 对象
	JSON bool
	// Timeout 大于 0 时限制单次调用（含重试）的总时长
	Timeout time.Duration
}

// Completion 补全结果
type Completion struct {
	Text     string
	Provider string
	Model    string
	// PromptTokens / CompletionTokens 优先使用提供商返回的用量，缺失时由调用方估算
	PromptTokens     int
	CompletionTokens int
	LatencyMs        int64
}

// Provider 大模型提供商
type Provider interface {
	// Name 提供商标识
	Name() string
	// Model 使用的模型名
	Model() string
	// Complete 发送请求并返回文本
	Complete(ctx context.Context, req ChatRequest) (*Completion, error)
}
