package lead

import "context"

// Sender 线索推送接口（定义在 application 层）
// 这是应用层需要的技术能力，不是领域概念
type Sender interface {
	Enabled() bool
	Send(ctx context.Context, payload any) error
}
