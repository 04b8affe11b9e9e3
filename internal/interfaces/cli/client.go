// Package cli 终端问卷客户端与管理命令，通过 REST API 与后端通信
package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	appSurvey "github.com/encuestaia/backend/internal/application/survey"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/interfaces/http/handler"
	"github.com/go-resty/resty/v2"
)

// APIClient 基于 resty 封装的后端客户端，直接复用业务结构体
type APIClient struct {
	client  *resty.Client
	baseURL string
}

// NewAPIClient 创建后端客户端；timeout 需覆盖报告生成的耗时
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &APIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// BaseURL 后端地址
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// APIResponse 通用 API 响应（复用 response.Response 的 JSON 结构）
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Data    T      `json:"data,omitempty"`
	Page    *struct {
		Total int `json:"total"`
	} `json:"page,omitempty"`
}

// APIError 非 2xx 响应
type APIError struct {
	Status  int
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsLLMFailure 模型调用失败，可以重试
func IsLLMFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadGateway
}

// IsValidation 输入校验失败
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}

// do 执行请求并统一处理成功/错误响应的 JSON 解析
// resty 的 SetResult 仅在 2xx 时解析，SetError 在 4xx/5xx 时解析
// 由于两者的 code/message 字段一致，用同类型接收即可
func do[T any](r *resty.Request, method, path string) (*APIResponse[T], error) {
	var result APIResponse[T]
	resp, err := r.SetResult(&result).SetError(&result).Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		message := result.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return nil, &APIError{
			Status:  resp.StatusCode(),
			Code:    result.Code,
			Message: message,
			Detail:  result.Detail,
		}
	}
	return &result, nil
}

// Health 健康检查
func (c *APIClient) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode())
	}
	return nil
}

// CreateSurvey 创建会话
func (c *APIClient) CreateSurvey(ctx context.Context) (*handler.SessionView, error) {
	return c.sessionCall(ctx, http.MethodPost, "/api/v1/surveys", nil)
}

// GetSurvey 查询会话
func (c *APIClient) GetSurvey(ctx context.Context, id string) (*handler.SessionView, error) {
	return c.sessionCall(ctx, http.MethodGet, "/api/v1/surveys/"+id, nil)
}

// Begin 进入问卷
func (c *APIClient) Begin(ctx context.Context, id string) (*handler.SessionView, error) {
	return c.sessionCall(ctx, http.MethodPost, "/api/v1/surveys/"+id+"/begin", nil)
}

// Answer 提交回答
func (c *APIClient) Answer(ctx context.Context, id string, in appSurvey.AnswerInput) (*handler.SessionView, error) {
	return c.sessionCall(ctx, http.MethodPost, "/api/v1/surveys/"+id+"/answers", in)
}

// Contact 提交联系方式
func (c *APIClient) Contact(ctx context.Context, id string, in appSurvey.ContactInput) (*handler.SessionView, error) {
	return c.sessionCall(ctx, http.MethodPost, "/api/v1/surveys/"+id+"/contact", in)
}

// Report 生成报告
func (c *APIClient) Report(ctx context.Context, id string) (*handler.SessionView, error) {
	return c.sessionCall(ctx, http.MethodPost, "/api/v1/surveys/"+id+"/report", nil)
}

func (c *APIClient) sessionCall(ctx context.Context, method, path string, body any) (*handler.SessionView, error) {
	r := c.client.R().SetContext(ctx)
	if body != nil {
		r.SetBody(body)
	}
	result, err := do[*handler.SessionView](r, method, path)
	if err != nil {
		return nil, err
	}
	if result.Data == nil || result.Data.Session == nil {
		return nil, fmt.Errorf("empty session in response from %s", path)
	}
	return result.Data, nil
}

// ListSessions 分页列出会话；completed 为 nil 时不过滤
func (c *APIClient) ListSessions(ctx context.Context, completed *bool, page, pageSize int) ([]survey.SessionSummary, int, error) {
	r := c.client.R().SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("pageSize", strconv.Itoa(pageSize))
	if completed != nil {
		r.SetQueryParam("completed", strconv.FormatBool(*completed))
	}

	result, err := do[[]survey.SessionSummary](r, http.MethodGet, "/api/v1/surveys")
	if err != nil {
		return nil, 0, err
	}
	total := len(result.Data)
	if result.Page != nil {
		total = result.Page.Total
	}
	return result.Data, total, nil
}

// Export 下载会话数据，返回原始 JSON 与服务端建议的文件名
func (c *APIClient) Export(ctx context.Context, id string) ([]byte, string, error) {
	var errBody APIResponse[any]
	resp, err := c.client.R().SetContext(ctx).SetError(&errBody).Get("/api/v1/surveys/" + id + "/export")
	if err != nil {
		return nil, "", err
	}
	if resp.IsError() {
		return nil, "", &APIError{
			Status:  resp.StatusCode(),
			Code:    errBody.Code,
			Message: errBody.Message,
			Detail:  errBody.Detail,
		}
	}

	filename := survey.ExportFilename(time.Now())
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return resp.Body(), filename, nil
}
