package survey

// ListFilter 会话列表查询条件
type ListFilter struct {
	Completed *bool // nil 表示不过滤
	Limit     int
	Offset    int
}

// WebhookStatus 线索推送状态
type WebhookStatus string

const (
	WebhookPending  WebhookStatus = "pending"
	WebhookSent     WebhookStatus = "sent"
	WebhookFailed   WebhookStatus = "failed"
	WebhookDisabled WebhookStatus = "disabled"
)

// SessionSummary 列表视图中的会话摘要
type SessionSummary struct {
	ID            string        `json:"id"`
	Stage         Stage         `json:"stage"`
	UserName      string        `json:"userName"`
	UserEmail     string        `json:"userEmail"`
	UserPhone     string        `json:"userPhone,omitempty"`
	CompanyName   string        `json:"companyName"`
	Sector        string        `json:"sector"`
	Completed     bool          `json:"completed"`
	WebhookStatus WebhookStatus `json:"webhookStatus,omitempty"`
	WebhookError  string        `json:"webhookError,omitempty"`
	CreatedAt     int64         `json:"createdAt"` // Unix 毫秒
	UpdatedAt     int64         `json:"updatedAt"`
	CompletedAt   int64         `json:"completedAt,omitempty"` // 未完成时为 0
}

// Repository 问卷会话仓储接口
type Repository interface {
	// Save 保存会话（创建或更新）
	Save(s *Session) error

	// FindByID 根据 ID 查找会话，不存在时返回 ErrSessionNotFound
	FindByID(id string) (*Session, error)

	// List 按更新时间倒序分页列出会话摘要
	List(filter ListFilter) ([]*SessionSummary, error)

	// Count 统计满足条件的会话数
	Count(filter ListFilter) (int, error)

	// UpdateWebhookStatus 记录线索推送结果
	UpdateWebhookStatus(id string, status WebhookStatus, errMsg string) error

	// Delete 删除会话
	Delete(id string) error
}
