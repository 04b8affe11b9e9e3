package mcp

import (
	"log/slog"
	"net/http"

	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/llmcall"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer MCP 服务器
type MCPServer struct {
	server  *mcp.Server
	handler http.Handler
	surveys *appSurvey.Service
	calls   llmcall.Repository
	logger  *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(surveys *appSurvey.Service, calls llmcall.Repository) *MCPServer {
	// 创建 MCP 服务器实例
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "encuesta-ia",
			Version: "0.1.0",
		},
		nil, // 使用默认能力
	)

	mcpServer := &MCPServer{
		server:  server,
		surveys: surveys,
		calls:   calls,
		logger:  log.NewModuleLogger("mcp", "server"),
	}

	// 注册工具：list_leads
	mcp.AddTool(server, &mcp.Tool{
		Name: "list_leads",
		Description: `List completed survey sessions (leads), newest first.
Parameters:
- limit (int, optional): Max results, default 20, max 100
- offset (int, optional): Number of leads to skip, default 0
Returns: leads with contact info, company, sector and webhook delivery status, plus the total count.`,
	}, mcpServer.listLeadsTool)

	// 注册工具：get_survey_report
	mcp.AddTool(server, &mcp.Tool{
		Name: "get_survey_report",
		Description: `Get the diagnostic report and conversation history of a survey session.
Parameters:
- session_id (string, required): Survey session ID
Returns: respondent data, full question/answer history and the Markdown report (empty if not generated yet).`,
	}, mcpServer.getSurveyReportTool)

	// 注册工具：get_llm_stats
	mcp.AddTool(server, &mcp.Tool{
		Name: "get_llm_stats",
		Description: `Get LLM call statistics grouped by task, provider and model.
Parameters:
- since (string, optional): Start date in YYYY-MM-DD format, defaults to all time
Returns: call count, failures, fallbacks, average latency and token totals per group.`,
	}, mcpServer.getLLMStatsTool)

	// 创建 SSE Handler
	handler := mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)
	mcpServer.handler = handler

	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Start 启动服务器（HTTP/SSE 模式）
// 注意：MCP 服务器通过 HTTP Handler 提供服务，不需要单独启动
func (s *MCPServer) Start() error {
	s.logger.Info("MCP server ready", "transport", "sse", "path", "/mcp/sse")
	return nil
}

// Stop 停止服务器
func (s *MCPServer) Stop() error {
	// HTTP/SSE 模式下，由 HTTP 服务器统一管理生命周期
	return nil
}
