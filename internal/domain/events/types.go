// Package events 定义领域事件类型和接口
// 用于系统内部的事件驱动通信
package events

import "time"

// EventType 事件类型标识
type EventType string

// 问卷会话相关事件类型
const (
	// SurveyStarted 会话创建
	SurveyStarted EventType = "survey.started"
	// SurveyQuestionGenerated AI 生成了新问题
	SurveyQuestionGenerated EventType = "survey.question_generated"
	// SurveyFinished 对话结束，进入报告阶段
	SurveyFinished EventType = "survey.finished"
	// SurveyReportGenerated 报告已生成（触发线索推送）
	SurveyReportGenerated EventType = "survey.report_generated"
	// SurveyReset 会话被重置
	SurveyReset EventType = "survey.reset"
)

// 问卷目录相关事件类型
const (
	// CatalogFileChanged 目录覆盖文件被创建或修改
	CatalogFileChanged EventType = "catalog.file.changed"
	// CatalogFileRemoved 目录覆盖文件被删除
	CatalogFileRemoved EventType = "catalog.file.removed"
)

// SurveyEventTypes 推送给 WebSocket 客户端的事件类型
var SurveyEventTypes = []EventType{
	SurveyQuestionGenerated,
	SurveyFinished,
	SurveyReportGenerated,
	SurveyReset,
}

// Event 领域事件接口
// 所有事件类型都必须实现此接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Timestamp 返回事件发生时间
	Timestamp() time.Time
}
