package llm

import (
	"errors"
	"net/http"
)

var (
	// ErrNotConfigured 未配置 API Key
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrUnavailable 提供商不可达或返回服务端错误
	ErrUnavailable = errors.New("llm provider unavailable")
	// ErrTimeout 请求超时
	ErrTimeout = errors.New("llm request timed out")
	// ErrEmptyResponse 提供商返回空内容
	ErrEmptyResponse = errors.New("llm returned empty response")
	// ErrInvalidOutput 模型输出无法解析为期望的结构
	ErrInvalidOutput = errors.New("invalid llm output format")
	// ErrRetryExhausted 重试次数耗尽
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// ErrorCode 返回用于日志和 llm_calls 表的错误码
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "NOT_CONFIGURED"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY_RESPONSE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// serverSide 5xx 与 429 视为提供商暂时不可用
func serverSide(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// retryable 只重试提供商暂时不可用与空响应
func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrEmptyResponse)
}
