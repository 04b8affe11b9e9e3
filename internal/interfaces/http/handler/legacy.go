package handler

import (
	"log/slog"
	"net/http"

	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/encuestaia/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// LegacyHandler 无状态 AI 接口，兼容旧版前端
type LegacyHandler struct {
	questions *appSurvey.QuestionGenerator
	reports   *appSurvey.ReportGenerator
	logger    *slog.Logger
}

// NewLegacyHandler 创建兼容接口处理器
func NewLegacyHandler(questions *appSurvey.QuestionGenerator, reports *appSurvey.ReportGenerator) *LegacyHandler {
	return &LegacyHandler{
		questions: questions,
		reports:   reports,
		logger:    log.NewModuleLogger("http", "legacy_handler"),
	}
}

// LegacyQuestionRequest 旧版问题请求
type LegacyQuestionRequest struct {
	ConversationHistory []survey.ConversationEntry `json:"conversationHistory"`
	CurrentPhase        string                     `json:"currentPhase"`
	Sector              string                     `json:"sector"`
}

// LegacyQuestionResponse 旧版问题响应
type LegacyQuestionResponse struct {
	Responses []survey.GeneratedQuestion `json:"responses"`
}

// LegacyReportRequest 旧版报告请求
type LegacyReportRequest struct {
	CompanyName         string                     `json:"companyName"`
	UserName            string                     `json:"userName"`
	UserRole            string                     `json:"userRole"`
	ConversationHistory []survey.ConversationEntry `json:"conversationHistory"`
}

// Question 生成下一题
// @Summary 生成下一题（兼容接口）
// @Tags 兼容
// @Accept json
// @Produce json
// @Param body body LegacyQuestionRequest true "对话历史"
// @Success 200 {object} LegacyQuestionResponse
// @Router /api/ai/question [post]
func (h *LegacyHandler) Question(c *gin.Context) {
	var req LegacyQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.LegacyError(c, "Error generating question", err.Error())
		return
	}

	q, err := h.questions.Next(c.Request.Context(), appSurvey.QuestionInput{
		History:      req.ConversationHistory,
		CurrentPhase: survey.Phase(req.CurrentPhase),
		Sector:       req.Sector,
		Legacy:       true,
	})
	if err != nil {
		log.FromContext(c.Request.Context(), h.logger).Error("Legacy question generation failed", "error", err)
		response.LegacyError(c, "Error generating question", err.Error())
		return
	}
	c.JSON(http.StatusOK, LegacyQuestionResponse{Responses: []survey.GeneratedQuestion{*q}})
}

// Report 生成报告
// @Summary 生成诊断报告（兼容接口）
// @Tags 兼容
// @Accept json
// @Produce json
// @Param body body LegacyReportRequest true "受访者与对话历史"
// @Success 200 {object} map[string]string
// @Router /api/ai/report [post]
func (h *LegacyHandler) Report(c *gin.Context) {
	var req LegacyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.LegacyError(c, "Error generating report", err.Error())
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), appSurvey.ReportInput{
		CompanyName: req.CompanyName,
		UserName:    req.UserName,
		UserRole:    req.UserRole,
		History:     req.ConversationHistory,
	})
	if err != nil {
		log.FromContext(c.Request.Context(), h.logger).Error("Legacy report generation failed", "error", err)
		response.LegacyError(c, "Error generating report", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
