package handler

import (
	"net/http"
	"strconv"
	"time"

	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/encuestaia/backend/internal/infrastructure/websocket"
	"github.com/encuestaia/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// SurveyHandler 问卷会话处理器
type SurveyHandler struct {
	service *appSurvey.Service
	ws      *websocket.Server
}

// NewSurveyHandler 创建问卷会话处理器
func NewSurveyHandler(service *appSurvey.Service, ws *websocket.Server) *SurveyHandler {
	return &SurveyHandler{
		service: service,
		ws:      ws,
	}
}

// SessionView 返回给客户端的会话状态，浏览器可直接写入 localStorage
type SessionView struct {
	*survey.Session
	Progress        int              `json:"progress"`
	CurrentQuestion *survey.Question `json:"currentQuestion,omitempty"`
}

func newSessionView(s *survey.Session) *SessionView {
	v := &SessionView{Session: s, Progress: s.Progress()}
	if q, err := s.CurrentQuestion(); err == nil {
		v.CurrentQuestion = q
	}
	return v
}

// withSession 把会话 ID 写入请求上下文
func withSession(c *gin.Context) string {
	id := c.Param("id")
	c.Request = c.Request.WithContext(log.WithSurveyID(c.Request.Context(), id))
	return id
}

// Create 创建会话
// @Summary 创建问卷会话
// @Tags 问卷
// @Produce json
// @Success 200 {object} response.Response{data=SessionView}
// @Router /surveys [post]
func (h *SurveyHandler) Create(c *gin.Context) {
	s, err := h.service.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, newSessionView(s))
}

// List 分页列出会话
// @Summary 会话列表
// @Tags 问卷
// @Produce json
// @Param completed query bool false "只返回已完成（true）或未完成（false）的会话"
// @Param page query int false "页码，从 1 开始"
// @Param pageSize query int false "每页条数，默认 20，最大 100"
// @Success 200 {object} response.ResponseWithPage{data=[]survey.SessionSummary}
// @Router /surveys [get]
func (h *SurveyHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := survey.ListFilter{Limit: pageSize, Offset: (page - 1) * pageSize}
	if v := c.Query("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, CodeInvalidRequest, "completed debe ser true o false")
			return
		}
		filter.Completed = &completed
	}

	res, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	sessions := res.Sessions
	if sessions == nil {
		sessions = []*survey.SessionSummary{}
	}
	response.SuccessWithPage(c, sessions, page, pageSize, res.Total)
}

// Get 查询会话
// @Summary 查询会话
// @Tags 问卷
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} response.Response{data=SessionView}
// @Failure 404 {object} response.ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context(), withSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, newSessionView(s))
}

// Begin 开始问卷
// @Summary 从欢迎页进入问卷
// @Tags 问卷
// @Param id path string true "会话 ID"
// @Success 200 {object} response.Response{data=SessionView}
// @Router /surveys/{id}/begin [post]
func (h *SurveyHandler) Begin(c *gin.Context) {
	s, err := h.service.Begin(c.Request.Context(), withSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, newSessionView(s))
}

// Answer 提交回答
// @Summary 提交当前问题的回答
// @Tags 问卷
// @Accept json
// @Param id path string true "会话 ID"
// @Param body body appSurvey.AnswerInput true "回答"
// @Success 200 {object} response.Response{data=SessionView}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /surveys/{id}/answers [post]
func (h *SurveyHandler) Answer(c *gin.Context) {
	id := withSession(c)
	var in appSurvey.AnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidRequest, "Solicitud no válida", err.Error())
		return
	}

	s, err := h.service.Answer(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, newSessionView(s))
}

// Contact 提交联系方式
// @Summary 提交邮箱、电话与同意项
// @Tags 问卷
// @Accept json
// @Param id path string true "会话 ID"
// @Param body body appSurvey.ContactInput true "联系方式"
// @Success 200 {object} response.Response{data=SessionView}
// @Router /surveys/{id}/contact [post]
func (h *SurveyHandler) Contact(c *gin.Context) {
	id := withSession(c)
	var in appSurvey.ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, CodeInvalidRequest, "Solicitud no válida", err.Error())
		return
	}

	s, err := h.service.SubmitContact(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, newSessionView(s))
}

// Report 生成报告
// @Summary 生成诊断报告
// @Tags 问卷
// @Param id path string true "会话 ID"
// @Success 200 {object} response.Response{data=SessionView}
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /surveys/{id}/report [post]
func (h *SurveyHandler) Report(c *gin.Context) {
	s, err := h.service.GenerateReport(c.Request.Context(), withSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, newSessionView(s))
}

// Reset 重新开始
// @Summary 重置会话
// @Tags 问卷
// @Param id path string true "会话 ID"
// @Success 200 {object} response.Response{data=SessionView}
// @Router /surveys/{id}/reset [post]
func (h *SurveyHandler) Reset(c *gin.Context) {
	s, err := h.service.Reset(c.Request.Context(), withSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, newSessionView(s))
}

// Export 下载会话数据
// @Summary 导出会话数据（附件）
// @Tags 问卷
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} survey.Export
// @Router /surveys/{id}/export [get]
func (h *SurveyHandler) Export(c *gin.Context) {
	export, err := h.service.Export(c.Request.Context(), withSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Attachment(c, survey.ExportFilename(time.Now()), export)
}

// Events 订阅会话实时事件
// @Summary 会话事件 WebSocket
// @Tags 问卷
// @Param id path string true "会话 ID"
// @Router /surveys/{id}/ws [get]
func (h *SurveyHandler) Events(c *gin.Context) {
	id := withSession(c)
	if _, err := h.service.Get(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	if err := h.ws.ServeSession(c.Writer, c.Request, id); err != nil {
		log.FromContext(c.Request.Context(), log.NewModuleLogger("http", "survey_handler")).
			Debug("WebSocket upgrade failed", "error", err)
	}
}
