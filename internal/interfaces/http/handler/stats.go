package handler

import (
	"net/http"
	"time"

	"github.com/encuestaia/backend/internal/domain/llmcall"
	"github.com/encuestaia/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// StatsHandler 统计处理器
type StatsHandler struct {
	calls llmcall.Repository
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(calls llmcall.Repository) *StatsHandler {
	return &StatsHandler{
		calls: calls,
	}
}

// LLM 获取大模型调用统计
// @Summary 获取大模型调用统计
// @Tags 统计
// @Produce json
// @Param since query string false "起始日期，格式 YYYY-MM-DD（可选，默认统计全部）"
// @Success 200 {object} response.Response{data=[]llmcall.Stats}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /stats/llm [get]
func (h *StatsHandler) LLM(c *gin.Context) {
	var since time.Time
	if v := c.Query("since"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, CodeInvalidRequest, "since debe tener el formato YYYY-MM-DD")
			return
		}
		since = t
	}

	stats, err := h.calls.Stats(since)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, CodeInternal, "Error interno", err.Error())
		return
	}
	if stats == nil {
		stats = []*llmcall.Stats{}
	}
	response.Success(c, stats)
}
