package events

import "time"

// SurveyEvent 问卷会话状态变化事件
type SurveyEvent struct {
	// EventType 事件类型
	EventType EventType
	// SessionID 会话 ID
	SessionID string
	// Stage 事件发生后的界面阶段（welcome/survey/report）
	Stage string
	// Phase 当前问题所处的对话阶段
	Phase string
	// Progress 进度百分比
	Progress int
	// Payload 附加数据（新问题、报告文本等），直接序列化给客户端
	Payload any
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *SurveyEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *SurveyEvent) Timestamp() time.Time {
	return e.EventTime
}
