package events

import "time"

// CatalogFileEvent 问卷目录覆盖文件变更事件
// 当数据目录下的 catalog.yaml 被创建、修改或删除时触发（已防抖）
type CatalogFileEvent struct {
	// EventType 事件类型（changed/removed）
	EventType EventType
	// FilePath 文件完整路径
	FilePath string
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *CatalogFileEvent) Type() EventType {
	return e.EventType
}

// Timestamp 实现 Event 接口
func (e *CatalogFileEvent) Timestamp() time.Time {
	return e.EventTime
}
