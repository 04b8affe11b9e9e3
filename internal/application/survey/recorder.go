package survey

import (
	"log/slog"
	"time"

	"github.com/encuestaia/backend/internal/domain/llmcall"
	"github.com/encuestaia/backend/internal/infrastructure/llm"
)

// callRecorder 把每次 LLM 调用写入 llm_calls
type callRecorder struct {
	provider llm.Provider
	calls    llmcall.Repository
	counter  *llm.TokenCounter
	logger   *slog.Logger
}

// record 保存一次调用；写库失败只记录日志
// 提供商没有返回用量时用 tiktoken 估算
func (r *callRecorder) record(sessionID string, req llm.ChatRequest, c *llm.Completion, callErr error, fallback bool, start time.Time) {
	if r.calls == nil {
		return
	}

	call := &llmcall.Call{
		SessionID: sessionID,
		Task:      string(req.Task),
		Provider:  r.provider.Name(),
		Model:     r.provider.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   callErr == nil && !fallback,
		Fallback:  fallback,
		CreatedAt: start,
	}
	if c != nil {
		call.Provider = c.Provider
		call.Model = c.Model
		call.PromptTokens = c.PromptTokens
		call.CompletionTokens = c.CompletionTokens
		if c.LatencyMs > 0 {
			call.LatencyMs = c.LatencyMs
		}
	}
	if r.counter != nil {
		if call.PromptTokens == 0 {
			call.PromptTokens = r.counter.CountAll(req.System, req.User)
		}
		if call.CompletionTokens == 0 && c != nil {
			call.CompletionTokens = r.counter.Count(c.Text)
		}
	}
	if callErr != nil {
		call.ErrorCode = llm.ErrorCode(callErr)
		call.Error = callErr.Error()
	}

	if err := r.calls.Save(call); err != nil {
		r.logger.Warn("Failed to record LLM call",
			"session_id", sessionID,
			"task", req.Task,
			"error", err,
		)
	}
}
