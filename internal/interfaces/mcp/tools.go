package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/encuestaia/backend/internal/domain/llmcall"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListLeadsInput 线索列表工具输入
type ListLeadsInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"返回条数，默认 20，最大 100"`
	Offset int `json:"offset,omitempty" jsonschema:"跳过条数，默认 0"`
}

// Lead 一条线索
type Lead struct {
	SessionID     string `json:"session_id" jsonschema:"会话 ID"`
	UserName      string `json:"user_name" jsonschema:"受访者姓名"`
	UserEmail     string `json:"user_email" jsonschema:"邮箱"`
	UserPhone     string `json:"user_phone,omitempty" jsonschema:"电话（用户同意后才有）"`
	CompanyName   string `json:"company_name" jsonschema:"公司名称"`
	Sector        string `json:"sector" jsonschema:"行业"`
	WebhookStatus string `json:"webhook_status,omitempty" jsonschema:"推送状态：pending/sent/failed/disabled"`
	CompletedAt   string `json:"completed_at,omitempty" jsonschema:"完成时间，RFC3339"`
}

// ListLeadsOutput 线索列表工具输出
type ListLeadsOutput struct {
	Leads []Lead `json:"leads" jsonschema:"线索列表"`
	Total int    `json:"total" jsonschema:"已完成会话总数"`
}

// listLeadsTool 列出已完成的会话
func (s *MCPServer) listLeadsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListLeadsInput,
) (*mcp.CallToolResult, ListLeadsOutput, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	completed := true
	res, err := s.surveys.List(ctx, survey.ListFilter{Completed: &completed, Limit: limit, Offset: offset})
	if err != nil {
		return nil, ListLeadsOutput{}, fmt.Errorf("failed to list leads: %w", err)
	}

	out := ListLeadsOutput{Leads: make([]Lead, 0, len(res.Sessions)), Total: res.Total}
	for _, summary := range res.Sessions {
		lead := Lead{
			SessionID:     summary.ID,
			UserName:      summary.UserName,
			UserEmail:     summary.UserEmail,
			UserPhone:     summary.UserPhone,
			CompanyName:   summary.CompanyName,
			Sector:        summary.Sector,
			WebhookStatus: string(summary.WebhookStatus),
		}
		if summary.CompletedAt > 0 {
			lead.CompletedAt = time.UnixMilli(summary.CompletedAt).UTC().Format(time.RFC3339)
		}
		out.Leads = append(out.Leads, lead)
	}
	return nil, out, nil
}

// SurveyReportInput 报告工具输入
type SurveyReportInput struct {
	SessionID string `json:"session_id" jsonschema:"会话 ID"`
}

// SurveyReportOutput 报告工具输出
type SurveyReportOutput struct {
	SessionID           string                     `json:"session_id" jsonschema:"会话 ID"`
	Stage               string                     `json:"stage" jsonschema:"会话阶段：welcome/survey/report"`
	Completed           bool                       `json:"completed" jsonschema:"报告是否已生成"`
	FormData            survey.FormData            `json:"form_data" jsonschema:"受访者数据"`
	ConversationHistory []survey.ConversationEntry `json:"conversation_history" jsonschema:"问答历史"`
	Report              string                     `json:"report" jsonschema:"Markdown 报告，未生成时为空"`
}

// getSurveyReportTool 读取会话报告与历史
func (s *MCPServer) getSurveyReportTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SurveyReportInput,
) (*mcp.CallToolResult, SurveyReportOutput, error) {
	if input.SessionID == "" {
		return nil, SurveyReportOutput{}, fmt.Errorf("session_id is required")
	}

	session, err := s.surveys.Get(ctx, input.SessionID)
	if err != nil {
		return nil, SurveyReportOutput{}, fmt.Errorf("failed to get session %s: %w", input.SessionID, err)
	}

	history := session.History
	if history == nil {
		history = []survey.ConversationEntry{}
	}
	return nil, SurveyReportOutput{
		SessionID:           session.ID,
		Stage:               string(session.Stage),
		Completed:           session.IsCompleted(),
		FormData:            session.FormData,
		ConversationHistory: history,
		Report:              session.Report,
	}, nil
}

// LLMStatsInput 调用统计工具输入
type LLMStatsInput struct {
	Since string `json:"since,omitempty" jsonschema:"起始日期，格式 YYYY-MM-DD（可选）"`
}

// LLMStatsOutput 调用统计工具输出
type LLMStatsOutput struct {
	Since string           `json:"since,omitempty" jsonschema:"起始日期"`
	Stats []*llmcall.Stats `json:"stats" jsonschema:"按任务、提供商和模型聚合的统计"`
}

// getLLMStatsTool 查询大模型调用统计
func (s *MCPServer) getLLMStatsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input LLMStatsInput,
) (*mcp.CallToolResult, LLMStatsOutput, error) {
	var since time.Time
	if input.Since != "" {
		t, err := time.Parse("2006-01-02", input.Since)
		if err != nil {
			return nil, LLMStatsOutput{}, fmt.Errorf("invalid since %q, expected YYYY-MM-DD", input.Since)
		}
		since = t
	}

	stats, err := s.calls.Stats(since)
	if err != nil {
		return nil, LLMStatsOutput{}, fmt.Errorf("failed to query llm stats: %w", err)
	}
	if stats == nil {
		stats = []*llmcall.Stats{}
	}
	return nil, LLMStatsOutput{Since: input.Since, Stats: stats}, nil
}
