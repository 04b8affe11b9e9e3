package log

import (
	"context"
	"log/slog"
)

type ctxKey string

// 上下文键定义
const (
	// requestIDKey HTTP 请求 ID
	requestIDKey ctxKey = "request_id"

	// surveyIDKey 问卷会话 ID
	surveyIDKey ctxKey = "survey_id"
)

// WithRequestID 在上下文中添加请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithSurveyID 在上下文中添加问卷会话 ID
func WithSurveyID(ctx context.Context, surveyID string) context.Context {
	return context.WithValue(ctx, surveyIDKey, surveyID)
}

// RequestIDFromContext 读取请求 ID
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogCtxFromContext 从上下文中提取日志字段
func LogCtxFromContext(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String(string(requestIDKey), requestID))
	}
	if surveyID, ok := ctx.Value(surveyIDKey).(string); ok && surveyID != "" {
		attrs = append(attrs, slog.String(string(surveyIDKey), surveyID))
	}

	return attrs
}

// FromContext 返回携带上下文字段的 logger
func FromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	attrs := LogCtxFromContext(ctx)
	if len(attrs) == 0 {
		return logger
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return logger.With(args...)
}
