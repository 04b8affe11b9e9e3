// Package llmcall 记录每一次大模型调用，用于成本与质量统计
package llmcall

import "time"

// Call 一次 LLM 调用记录
type Call struct {
	ID               int64
	SessionID        string // 兼容接口的无状态调用为空
	Task             string // question / report
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMs        int64
	Success          bool
	Fallback         bool   // 输出不可用，使用了兜底问题
	ErrorCode        string // 见 llm.ErrorCode
	Error            string
	CreatedAt        time.Time
}

// Stats 按任务、提供商和模型聚合的统计
type Stats struct {
	Task                  string  `json:"task"`
	Provider              string  `json:"provider"`
	Model                 string  `json:"model"`
	Calls                 int     `json:"calls"`
	Failures              int     `json:"failures"`
	Fallbacks             int     `json:"fallbacks"`
	AvgLatencyMs          float64 `json:"avgLatencyMs"`
	TotalPromptTokens     int     `json:"totalPromptTokens"`
	TotalCompletionTokens int     `json:"totalCompletionTokens"`
}

// Repository LLM 调用记录仓储
type Repository interface {
	// Save 保存调用记录，写入后回填 ID
	Save(call *Call) error

	// FindBySession 按时间顺序返回会话的调用记录
	FindBySession(sessionID string) ([]*Call, error)

	// Stats 统计 since 之后的调用；since 为零值时统计全部
	Stats(since time.Time) ([]*Stats, error)
}
