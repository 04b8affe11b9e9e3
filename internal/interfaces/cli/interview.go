package cli

import (
	"context"
	"errors"
	"fmt"

	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/interfaces/http/handler"
)

// errAborted 用户放弃问卷
var errAborted = errors.New("survey aborted")

// surveyAPI 问卷流程用到的后端接口
type surveyAPI interface {
	CreateSurvey(ctx context.Context) (*handler.SessionView, error)
	Begin(ctx context.Context, id string) (*handler.SessionView, error)
	Answer(ctx context.Context, id string, in appSurvey.AnswerInput) (*handler.SessionView, error)
	Contact(ctx context.Context, id string, in appSurvey.ContactInput) (*handler.SessionView, error)
	Report(ctx context.Context, id string) (*handler.SessionView, error)
}

// prompter 与受访者的交互
type prompter interface {
	// Welcome 展示欢迎页，返回 false 表示不开始
	Welcome() (bool, error)
	// Ask 展示一个问题并收集回答
	Ask(q *survey.Question, progress int) (appSurvey.AnswerInput, error)
	// Contact 收集邮箱、电话和同意项
	Contact() (appSurvey.ContactInput, error)
	// Retry 询问是否重试失败的操作
	Retry(err error) bool
	// Wait 在 fn 执行期间显示等待提示
	Wait(title string, fn func() error) error
	// Notify 显示一条提示
	Notify(message string)
}

// waitingTitle 等待模型生成问题时的提示
const waitingTitle = "La IA está buscando la mejor pregunta para ti..."

// interview 终端问卷流程
type interview struct {
	api surveyAPI
	ui  prompter
}

// Run 完成一次问卷，返回带报告的会话
func (iv *interview) Run(ctx context.Context) (*handler.SessionView, error) {
	start, err := iv.ui.Welcome()
	if err != nil {
		return nil, err
	}
	if !start {
		return nil, errAborted
	}

	view, err := iv.api.CreateSurvey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	if view, err = iv.api.Begin(ctx, view.ID); err != nil {
		return nil, fmt.Errorf("failed to begin survey: %w", err)
	}

	for view.Stage == survey.StageSurvey && view.CurrentQuestion != nil {
		if view, err = iv.answer(ctx, view); err != nil {
			return nil, err
		}
	}

	return iv.finish(ctx, view)
}

// answer 回答当前问题，模型失败时按用户选择重试
func (iv *interview) answer(ctx context.Context, view *handler.SessionView) (*handler.SessionView, error) {
	q := view.CurrentQuestion
	in, err := iv.ui.Ask(q, view.Progress)
	if err != nil {
		return nil, err
	}
	in.QuestionID = q.ID

	for {
		var next *handler.SessionView
		err = iv.ui.Wait(waitingTitle, func() error {
			var callErr error
			next, callErr = iv.api.Answer(ctx, view.ID, in)
			return callErr
		})
		switch {
		case err == nil:
			return next, nil
		case IsValidation(err):
			iv.ui.Notify(err.Error())
			return view, nil
		case IsLLMFailure(err) && iv.ui.Retry(err):
			continue
		default:
			return nil, fmt.Errorf("failed to submit answer: %w", err)
		}
	}
}

// finish 收集联系方式并生成报告；缺少邮箱或同意项时重新收集
func (iv *interview) finish(ctx context.Context, view *handler.SessionView) (*handler.SessionView, error) {
	for {
		contact, err := iv.ui.Contact()
		if err != nil {
			return nil, err
		}
		if view, err = iv.api.Contact(ctx, view.ID, contact); err != nil {
			return nil, fmt.Errorf("failed to submit contact: %w", err)
		}

		report, err := iv.report(ctx, view.ID)
		if IsValidation(err) {
			iv.ui.Notify(err.Error())
			continue
		}
		return report, err
	}
}

func (iv *interview) report(ctx context.Context, id string) (*handler.SessionView, error) {
	for {
		var report *handler.SessionView
		err := iv.ui.Wait("Generando tu informe personalizado...", func() error {
			var callErr error
			report, callErr = iv.api.Report(ctx, id)
			return callErr
		})
		switch {
		case err == nil:
			return report, nil
		case IsValidation(err):
			return nil, err
		case IsLLMFailure(err) && iv.ui.Retry(err):
			continue
		default:
			return nil, fmt.Errorf("failed to generate report: %w", err)
		}
	}
}
