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

// ReportInput 生成报告的输入
type ReportInput struct {
	SessionID   string
	CompanyName string
	UserName    string
	UserRole    string
	History     []survey.ConversationEntry
}

// ReportGenerator 调用 LLM 生成诊断报告
type ReportGenerator struct {
	provider llm.Provider
	cfg      *config.LLMConfig
	catalogs CatalogSource
	recorder *callRecorder
	logger   *slog.Logger
}

// NewReportGenerator 创建报告生成器
func NewReportGenerator(provider llm.Provider, cfg *config.LLMConfig, catalogs CatalogSource, counter *llm.TokenCounter, calls llmcall.Repository) *ReportGenerator {
	logger := log.NewModuleLogger("survey", "report_generator")
	return &ReportGenerator{
		provider: provider,
		cfg:      cfg,
		catalogs: catalogs,
		recorder: &callRecorder{provider: provider, calls: calls, counter: counter, logger: logger},
		logger:   logger,
	}
}

// Generate 生成报告文本；缺失的姓名与公司渲染为 N/A
func (g *ReportGenerator) Generate(ctx context.Context, in ReportInput) (string, error) {
	business := g.catalogs.Current().Business

	system, user, err := renderPair("report_system", "report_user", reportPromptData{
		CompanyName:  survey.OrNA(in.CompanyName),
		UserName:     survey.OrNA(in.UserName),
		UserRole:     survey.OrNA(in.UserRole),
		History:      in.History,
		BusinessName: business.Name,
		HourlyCost:   business.HourlyCost,
	})
	if err != nil {
		return "", err
	}

	req := llm.RequestFor(g.cfg, llm.TaskReport, system, user, false)
	start := time.Now()
	completion, err := g.provider.Complete(ctx, req)
	if err != nil {
		g.recorder.record(in.SessionID, req, nil, err, false, start)
		g.logger.Warn("Report generation failed",
			"session_id", in.SessionID,
			"error", err,
		)
		return "", fmt.Errorf("%w: report: %w", ErrGeneration, err)
	}

	report := unwrapReport(completion.Text)
	if report == "" {
		err = llm.ErrEmptyResponse
		g.recorder.record(in.SessionID, req, completion, err, false, start)
		return "", fmt.Errorf("%w: report: %w", ErrGeneration, err)
	}
	g.recorder.record(in.SessionID, req, completion, nil, false, start)

	g.logger.Info("Report generated",
		"session_id", in.SessionID,
		"length", len(report),
	)
	return report, nil
}

// unwrapReport 模型偶尔把报告包在 {"report": "..."} 中
func unwrapReport(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "```") {
		return text
	}
	out, err := llm.ExtractJSON[struct {
		Report string `json:"report"`
	}](text, nil)
	if err != nil || strings.TrimSpace(out.Report) == "" {
		return text
	}
	return strings.TrimSpace(out.Report)
}
