// Package lead 把已完成的问卷作为线索推送到外部 webhook
package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/log"
)

// ErrNotCompleted 会话还没有报告
var ErrNotCompleted = errors.New("survey session has no report yet")

// Dispatcher 监听报告生成事件并推送线索
// 推送失败只记录在会话上，不影响受访者
type Dispatcher struct {
	repo   survey.Repository
	sender Sender
	logger *slog.Logger
}

// NewDispatcher 创建线索推送器
func NewDispatcher(repo survey.Repository, sender Sender) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		sender: sender,
		logger: log.NewModuleLogger("lead", "dispatcher"),
	}
}

// HandleEvent 实现 events.Handler
func (d *Dispatcher) HandleEvent(event events.Event) error {
	e, ok := event.(*events.SurveyEvent)
	if !ok || e.EventType != events.SurveyReportGenerated {
		return nil
	}
	return d.Deliver(context.Background(), e.SessionID)
}

// Subscribe 订阅报告生成事件
func (d *Dispatcher) Subscribe(bus events.EventBus) func() {
	return bus.Subscribe(events.SurveyReportGenerated, d)
}

// Deliver 推送指定会话的线索并记录结果
func (d *Dispatcher) Deliver(ctx context.Context, sessionID string) error {
	session, err := d.repo.FindByID(sessionID)
	if err != nil {
		return err
	}
	if !session.IsCompleted() {
		return ErrNotCompleted
	}

	if !d.sender.Enabled() {
		d.logger.Debug("Webhook disabled, lead not forwarded", "session_id", sessionID)
		return d.repo.UpdateWebhookStatus(sessionID, survey.WebhookDisabled, "")
	}

	if sendErr := d.sender.Send(ctx, NewPayload(session)); sendErr != nil {
		d.logger.Error("Failed to forward lead",
			"session_id", sessionID,
			"error", sendErr,
		)
		if err := d.repo.UpdateWebhookStatus(sessionID, survey.WebhookFailed, sendErr.Error()); err != nil {
			return err
		}
		return fmt.Errorf("failed to forward lead: %w", sendErr)
	}

	d.logger.Info("Lead forwarded", "session_id", sessionID)
	return d.repo.UpdateWebhookStatus(sessionID, survey.WebhookSent, "")
}

var _ events.Handler = (*Dispatcher)(nil)
