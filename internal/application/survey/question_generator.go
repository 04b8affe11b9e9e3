package survey

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/encuestaia/backend/internal/domain/llmcall"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/encuestaia/backend/internal/infrastructure/llm"
	"github.com/encuestaia/backend/internal/infrastructure/log"
)

// CatalogSource 提供当前生效的问卷目录
type CatalogSource interface {
	Current() *survey.Catalog
}

// QuestionInput 生成下一题的输入
type QuestionInput struct {
	SessionID    string // 无状态兼容接口为空
	History      []survey.ConversationEntry
	CurrentPhase survey.Phase
	Sector       string
	// Legacy 接受旧版阶段标签
	Legacy bool
}

// rawQuestion 兼容旧版 {"responses":[...]} 包装格式
type rawQuestion struct {
	survey.GeneratedQuestion
	Responses []survey.GeneratedQuestion `json:"responses,omitempty"`
}

// QuestionGenerator 调用 LLM 生成下一题
type QuestionGenerator struct {
	provider llm.Provider
	cfg      *config.LLMConfig
	catalogs CatalogSource
	counter  *llm.TokenCounter
	recorder *callRecorder
	logger   *slog.Logger
}

// NewQuestionGenerator 创建问题生成器；counter 与 calls 可为 nil
func NewQuestionGenerator(provider llm.Provider, cfg *config.LLMConfig, catalogs CatalogSource, counter *llm.TokenCounter, calls llmcall.Repository) *QuestionGenerator {
	logger := log.NewModuleLogger("survey", "question_generator")
	return &QuestionGenerator{
		provider: provider,
		cfg:      cfg,
		catalogs: catalogs,
		counter:  counter,
		recorder: &callRecorder{provider: provider, calls: calls, counter: counter, logger: logger},
		logger:   logger,
	}
}

// Next 生成下一题
// 历史达到硬上限时直接返回结束标记；模型输出无法解析或校验失败时返回兜底问题；
// 提供商错误原样返回
func (g *QuestionGenerator) Next(ctx context.Context, in QuestionInput) (*survey.GeneratedQuestion, error) {
	catalog := g.catalogs.Current()

	if len(in.History) >= catalog.Limits.HardLimit {
		g.logger.Info("Hard history limit reached, finishing survey",
			"session_id", in.SessionID,
			"history", len(in.History),
		)
		q := survey.ResultQuestion()
		return &q, nil
	}

	phase := in.CurrentPhase
	if !phase.IsKnown() && !(in.Legacy && phase.IsLegacy()) {
		phase = survey.PhaseBasicInfo
	}

	opening := len(catalog.OpeningQuestions)
	history, trimmed := trimHistory(g.counter, in.History, g.cfg.PromptTokenBudget, opening)
	if trimmed > 0 {
		g.logger.Debug("Conversation history trimmed",
			"session_id", in.SessionID,
			"dropped", trimmed,
		)
	}

	system, user, err := renderPair("question_system", "question_user", questionPromptData{
		CurrentPhase: phase,
		Sector:       in.Sector,
		Suggestions:  catalog.SuggestionsFor(in.Sector),
		Generic:      survey.Sector{Name: survey.GenericSectorName, Tasks: catalog.GenericTasks},
		Sectors:      catalog.Sectors,
		History:      history,
		Trimmed:      trimmed,
		OpeningCount: opening,
		MaxHistory:   catalog.Limits.MaxHistory,
		Legacy:       in.Legacy,
	})
	if err != nil {
		return nil, err
	}

	req := llm.RequestFor(g.cfg, llm.TaskQuestion, system, user, true)
	start := time.Now()
	completion, err := g.provider.Complete(ctx, req)
	if err != nil {
		g.recorder.record(in.SessionID, req, nil, err, false, start)
		g.logger.Warn("Question generation failed",
			"session_id", in.SessionID,
			"phase", phase,
			"error", err,
		)
		return nil, fmt.Errorf("%w: question: %w", ErrGeneration, err)
	}

	q, parseErr := parseQuestion(completion.Text, phase, in.Legacy)
	if parseErr != nil {
		g.logger.Warn("Unusable question output, using fallback",
			"session_id", in.SessionID,
			"phase", phase,
			"error", parseErr,
		)
		fb := survey.FallbackQuestion(catalog.FallbackQuestion, phase)
		q = &fb
	}
	g.recorder.record(in.SessionID, req, completion, parseErr, parseErr != nil, start)

	q.ApplyGuardrails(catalog.FrequencyOptions)

	g.logger.Debug("Question generated",
		"session_id", in.SessionID,
		"phase", q.Phase,
		"type", q.Type,
		"fallback", q.Fallback,
	)
	return q, nil
}

// parseQuestion 解析并校验模型输出；缺少阶段时沿用当前阶段
func parseQuestion(raw string, phase survey.Phase, legacy bool) (*survey.GeneratedQuestion, error) {
	out, err := llm.ExtractJSON[rawQuestion](raw, func(r rawQuestion) error {
		q := r.resolve(phase)
		return q.Validate(legacy)
	})
	if err != nil {
		return nil, err
	}
	q := out.resolve(phase)
	return &q, nil
}

func (r rawQuestion) resolve(phase survey.Phase) survey.GeneratedQuestion {
	q := r.GeneratedQuestion
	if strings.TrimSpace(q.Question) == "" && q.Phase == "" && len(r.Responses) > 0 {
		q = r.Responses[0]
	}
	if q.Phase == "" {
		q.Phase = phase
	}
	return q
}
