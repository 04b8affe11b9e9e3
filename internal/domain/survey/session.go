package survey

import (
	"fmt"
	"strings"
	"time"
)

// Session 一次问卷会话的完整状态
type Session struct {
	ID           string              `json:"id"`
	Stage        Stage               `json:"stage"`
	Questions    []Question          `json:"questions"`
	CurrentIndex int                 `json:"currentQuestionIndex"`
	FormData     FormData            `json:"formData"`
	History      []ConversationEntry `json:"conversationHistory"`
	Report       string              `json:"report,omitempty"`
	Consent      bool                `json:"consent"`
	PhoneConsent bool                `json:"phoneConsent"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	CompletedAt  *time.Time          `json:"completedAt,omitempty"`
}

// NewSession 创建处于 welcome 阶段的会话
func NewSession(id string, catalog *Catalog, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     StageWelcome,
		Questions: catalog.OpeningQuestionsCopy(),
		History:   []ConversationEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Begin 进入 survey 阶段；已在 survey 阶段时无副作用
func (s *Session) Begin() error {
	switch s.Stage {
	case StageWelcome:
		s.Stage = StageSurvey
		return nil
	case StageSurvey:
		return nil
	}
	return fmt.Errorf("%w: cannot begin from %s", ErrInvalidStage, s.Stage)
}

// CurrentQuestion 返回当前待回答的问题
func (s *Session) CurrentQuestion() (*Question, error) {
	if s.Stage != StageSurvey || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil, ErrNoCurrentQuestion
	}
	return &s.Questions[s.CurrentIndex], nil
}

// ComposeAnswer 根据问题类型合成最终回答
// checkbox-suggestions：勾选项与逐行填写的自定义任务去重合并，以 ", " 连接
func ComposeAnswer(q *Question, text string, selected []string) string {
	if q.Type != TypeCheckboxSuggestions {
		return strings.TrimSpace(text)
	}

	seen := make(map[string]bool, len(selected))
	tasks := make([]string, 0, len(selected))
	add := func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		tasks = append(tasks, v)
	}
	for _, opt := range selected {
		add(opt)
	}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		add(strings.TrimSpace(line))
	}
	return strings.Join(tasks, ", ")
}

// RecordAnswer 记录当前问题的回答
// 返回 true 表示队列中已没有问题，需要向 AI 请求下一题
func (s *Session) RecordAnswer(answer string, now time.Time) (bool, error) {
	q, err := s.CurrentQuestion()
	if err != nil {
		return false, err
	}
	if answer == "" && !q.Optional {
		return false, ErrAnswerRequired
	}

	s.FormData.Set(q.Key, answer)
	s.History = append(s.History, ConversationEntry{Question: q.Text, Answer: answer})
	s.UpdatedAt = now

	if s.CurrentIndex < len(s.Questions)-1 {
		s.CurrentIndex++
		return false, nil
	}
	return true, nil
}

// CurrentPhase 当前问题的阶段，没有问题时为 basic_info
func (s *Session) CurrentPhase() Phase {
	if s.CurrentIndex >= 0 && s.CurrentIndex < len(s.Questions) {
		return s.Questions[s.CurrentIndex].Phase
	}
	return PhaseBasicInfo
}

// AppendQuestion 追加问题并将其设为当前问题
func (s *Session) AppendQuestion(q Question, now time.Time) {
	s.Questions = append(s.Questions, q)
	s.CurrentIndex = len(s.Questions) - 1
	s.UpdatedAt = now
}

// Finish 进入报告阶段
func (s *Session) Finish(now time.Time) {
	s.Stage = StageReport
	s.UpdatedAt = now
}

// SetContact 保存联系方式和同意项
func (s *Session) SetContact(email string, consent, phoneConsent bool, phone string, now time.Time) {
	s.FormData.UserEmail = strings.TrimSpace(email)
	s.FormData.UserPhone = strings.TrimSpace(phone)
	s.Consent = consent
	s.PhoneConsent = phoneConsent
	s.UpdatedAt = now
}

// ReadyForReport 校验是否满足生成报告的条件
func (s *Session) ReadyForReport() error {
	if s.Stage != StageReport {
		return fmt.Errorf("%w: report requires stage %s", ErrInvalidStage, StageReport)
	}
	if s.FormData.UserEmail == "" {
		return ErrEmailRequired
	}
	if !s.Consent {
		return ErrConsentRequired
	}
	return nil
}

// SetReport 保存报告并标记完成
func (s *Session) SetReport(text string, now time.Time) error {
	if err := s.ReadyForReport(); err != nil {
		return err
	}
	s.Report = text
	s.CompletedAt = &now
	s.UpdatedAt = now
	return nil
}

// IsCompleted 报告是否已生成
func (s *Session) IsCompleted() bool {
	return s.CompletedAt != nil && s.Report != ""
}

// Reset 回到新建状态，ID 与创建时间不变
func (s *Session) Reset(catalog *Catalog, now time.Time) {
	fresh := NewSession(s.ID, catalog, s.CreatedAt)
	fresh.UpdatedAt = now
	*s = *fresh
}

// Progress survey 阶段的完成百分比
func (s *Session) Progress() int {
	if s.Stage != StageSurvey || len(s.Questions) == 0 {
		return 0
	}
	p := len(s.History) * 100 / len(s.Questions)
	if p > 100 {
		p = 100
	}
	return p
}

// Export 导出数据
func (s *Session) Export() Export {
	history := make([]ConversationEntry, len(s.History))
	copy(history, s.History)
	return Export{
		FormData:            s.FormData,
		ConversationHistory: history,
		Report:              s.Report,
	}
}
