// Package survey 编排问卷会话：开场问题、AI 追问、联系方式与报告
package survey

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// AnswerInput 提交回答
type AnswerInput struct {
	// QuestionID 客户端看到的当前问题，为空时不做过期检查
	QuestionID string   `json:"questionId"`
	Text       string   `json:"text"`
	Selected   []string `json:"selected"`
}

// ContactInput 联系方式与同意项
type ContactInput struct {
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Consent      bool   `json:"consent"`
	PhoneConsent bool   `json:"phoneConsent"`
}

// ListResult 分页结果
type ListResult struct {
	Sessions []*survey.SessionSummary
	Total    int
}

// Service 问卷会话服务
type Service struct {
	repo      survey.Repository
	catalogs  CatalogSource
	questions *QuestionGenerator
	reports   *ReportGenerator
	bus       events.EventBus
	answers   singleflight.Group
	reporting singleflight.Group
	locks     sessionLocks
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// NewService 创建问卷会话服务；bus 可为 nil
func NewService(repo survey.Repository, catalogs CatalogSource, questions *QuestionGenerator, reports *ReportGenerator, bus events.EventBus) *Service {
	return &Service{
		repo:      repo,
		catalogs:  catalogs,
		questions: questions,
		reports:   reports,
		bus:       bus,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    log.NewModuleLogger("survey", "service"),
	}
}

// Start 创建新会话
func (s *Service) Start(ctx context.Context) (*survey.Session, error) {
	session := survey.NewSession(s.newID(), s.catalogs.Current(), s.now())
	if err := s.repo.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.FromContext(ctx, s.logger).Info("Survey session started", "session_id", session.ID)
	s.publish(events.SurveyStarted, session, nil)
	return session, nil
}

// Get 查询会话
func (s *Service) Get(_ context.Context, id string) (*survey.Session, error) {
	return s.repo.FindByID(id)
}

// Begin 从 welcome 进入 survey 阶段
func (s *Service) Begin(_ context.Context, id string) (*survey.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if session.Stage == survey.StageSurvey {
		return session, nil
	}
	if err := session.Begin(); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.repo.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// Answer 记录当前问题的回答，队列为空时请求 AI 生成下一题
// 内容相同的并发提交合并为一次执行，其余提交按会话串行并做过期检查
func (s *Service) Answer(ctx context.Context, id string, in AnswerInput) (*survey.Session, error) {
	v, err, shared := s.answers.Do(answerKey(id, in), func() (interface{}, error) {
		unlock := s.locks.lock(id)
		defer unlock()
		return s.answer(ctx, id, in)
	})
	if shared {
		log.FromContext(ctx, s.logger).Debug("Duplicate answer submission collapsed", "session_id", id)
	}
	if err != nil {
		return nil, err
	}
	return v.(*survey.Session), nil
}

func answerKey(id string, in AnswerInput) string {
	parts := append([]string{id, in.QuestionID, strings.TrimSpace(in.Text)}, in.Selected...)
	return strings.Join(parts, "\x1f")
}

func (s *Service) answer(ctx context.Context, id string, in AnswerInput) (*survey.Session, error) {
	logger := log.FromContext(ctx, s.logger)

	session, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	q, err := session.CurrentQuestion()
	if err != nil {
		return nil, err
	}
	if in.QuestionID != "" && in.QuestionID != q.ID {
		return nil, fmt.Errorf("%w: got %s, current is %s", survey.ErrStaleAnswer, in.QuestionID, q.ID)
	}

	needsAI, err := session.RecordAnswer(survey.ComposeAnswer(q, in.Text, in.Selected), s.now())
	if err != nil {
		return nil, err
	}

	if needsAI {
		if err := s.advance(ctx, session); err != nil {
			// 不保存，客户端可以重新提交同一回答
			return nil, err
		}
	}

	if err := s.repo.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Debug("Answer recorded",
		"session_id", id,
		"history", len(session.History),
		"stage", session.Stage,
	)

	switch {
	case session.Stage == survey.StageReport:
		s.publish(events.SurveyFinished, session, nil)
	case needsAI:
		current, _ := session.CurrentQuestion()
		s.publish(events.SurveyQuestionGenerated, session, current)
	}
	return session, nil
}

// advance 请求下一题，或在满足结束条件时进入报告阶段
func (s *Service) advance(ctx context.Context, session *survey.Session) error {
	limits := s.catalogs.Current().Limits
	now := s.now()

	if len(session.History) >= limits.MaxHistory {
		session.Finish(now)
		return nil
	}

	generated, err := s.questions.Next(ctx, QuestionInput{
		SessionID:    session.ID,
		History:      session.History,
		CurrentPhase: session.CurrentPhase(),
		Sector:       session.FormData.Sector,
	})
	if err != nil {
		return err
	}

	if survey.ShouldFinish(generated, len(session.History), limits.MaxHistory) {
		session.Finish(now)
		return nil
	}
	session.AppendQuestion(generated.ToQuestion(len(session.History)), now)
	return nil
}

// SubmitContact 保存联系方式；只允许在报告阶段提交
func (s *Service) SubmitContact(_ context.Context, id string, in ContactInput) (*survey.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if session.Stage != survey.StageReport {
		return nil, fmt.Errorf("%w: contact requires stage %s", survey.ErrInvalidStage, survey.StageReport)
	}

	session.SetContact(in.Email, in.Consent, in.PhoneConsent, in.Phone, s.now())
	if err := s.repo.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// GenerateReport 生成并保存报告；已生成时直接返回
// 同一会话的并发请求只调用一次模型、只发布一次事件
func (s *Service) GenerateReport(ctx context.Context, id string) (*survey.Session, error) {
	v, err, _ := s.reporting.Do(id, func() (interface{}, error) {
		unlock := s.locks.lock(id)
		defer unlock()
		return s.generateReport(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*survey.Session), nil
}

func (s *Service) generateReport(ctx context.Context, id string) (*survey.Session, error) {
	session, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return session, nil
	}
	if err := session.ReadyForReport(); err != nil {
		return nil, err
	}

	report, err := s.reports.Generate(ctx, ReportInput{
		SessionID:   session.ID,
		CompanyName: session.FormData.CompanyName,
		UserName:    session.FormData.UserName,
		UserRole:    session.FormData.UserRole,
		History:     session.History,
	})
	if err != nil {
		return nil, err
	}

	if err := session.SetReport(report, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.FromContext(ctx, s.logger).Info("Survey completed", "session_id", id)
	s.publish(events.SurveyReportGenerated, session, map[string]string{"report": report})
	return session, nil
}

// Reset 重新开始问卷，会话 ID 不变
func (s *Service) Reset(_ context.Context, id string) (*survey.Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	session.Reset(s.catalogs.Current(), s.now())
	if err := s.repo.Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.publish(events.SurveyReset, session, nil)
	return session, nil
}

// Export 导出会话数据
func (s *Service) Export(_ context.Context, id string) (*survey.Export, error) {
	session, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	export := session.Export()
	return &export, nil
}

// List 分页列出会话
func (s *Service) List(_ context.Context, filter survey.ListFilter) (*ListResult, error) {
	sessions, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Sessions: sessions, Total: total}, nil
}

func (s *Service) publish(t events.EventType, session *survey.Session, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(&events.SurveyEvent{
		EventType: t,
		SessionID: session.ID,
		Stage:     string(session.Stage),
		Phase:     string(session.CurrentPhase()),
		Progress:  session.Progress(),
		Payload:   payload,
		EventTime: s.now(),
	})
}
