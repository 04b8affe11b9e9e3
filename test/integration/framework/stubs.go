//go:build integration
// +build integration

package framework

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// LLMStub OpenAI 兼容的 /chat/completions 桩服务，按顺序返回预设内容
type LLMStub struct {
	*httptest.Server

	mu        sync.Mutex
	responses []string
	requests  int
}

// NewLLMStub 创建模型桩服务；最后一条回复会被重复使用
func NewLLMStub(responses ...string) *LLMStub {
	s := &LLMStub{responses: responses}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *LLMStub) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	_, _ = io.Copy(io.Discard, r.Body)

	s.mu.Lock()
	s.requests++
	content := ""
	if len(s.responses) > 0 {
		content = s.responses[0]
		if len(s.responses) > 1 {
			s.responses = s.responses[1:]
		}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model": "stub-model",
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 100, "completion_tokens": 20},
	})
}

// Requests 已收到的请求数
func (s *LLMStub) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// WebhookRecorder 记录收到的线索推送
type WebhookRecorder struct {
	*httptest.Server

	mu       sync.Mutex
	payloads []map[string]any
}

// NewWebhookRecorder 创建 webhook 接收端
func NewWebhookRecorder() *WebhookRecorder {
	rec := &WebhookRecorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, payload)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	return rec
}

// Payloads 已收到的推送
func (rec *WebhookRecorder) Payloads() []map[string]any {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]map[string]any(nil), rec.payloads...)
}
