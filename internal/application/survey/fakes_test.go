package survey

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/domain/llmcall"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/catalog"
	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/encuestaia/backend/internal/infrastructure/llm"
)

// fakeProvider 按顺序返回预设输出
type fakeProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []llm.ChatRequest
	delay     time.Duration
}

func (p *fakeProvider) Name() string  { return "fake" }
func (p *fakeProvider) Model() string { return "fake-model" }

func (p *fakeProvider) Complete(ctx context.Context, req llm.ChatRequest) (*llm.Completion, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	text := ""
	if len(p.responses) > 0 {
		text = p.responses[0]
		if len(p.responses) > 1 {
			p.responses = p.responses[1:]
		}
	}
	return &llm.Completion{Text: text, Provider: "fake", Model: "fake-model", PromptTokens: 10, CompletionTokens: 5, LatencyMs: 3}, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// memRepo 内存仓储，保存时深拷贝以模拟持久化
type memRepo struct {
	mu       sync.Mutex
	sessions map[string][]byte
	webhooks map[string]survey.WebhookStatus
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: map[string][]byte{}, webhooks: map[string]survey.WebhookStatus{}}
}

func (r *memRepo) Save(s *survey.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = data
	return nil
}

func (r *memRepo) FindByID(id string) (*survey.Session, error) {
	r.mu.Lock()
	data, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, survey.ErrSessionNotFound
	}
	var s survey.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *memRepo) List(filter survey.ListFilter) ([]*survey.SessionSummary, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	var out []*survey.SessionSummary
	for _, id := range ids {
		s, _ := r.FindByID(id)
		if filter.Completed != nil && s.IsCompleted() != *filter.Completed {
			continue
		}
		out = append(out, &survey.SessionSummary{ID: s.ID, Stage: s.Stage, Completed: s.IsCompleted()})
	}
	return out, nil
}

func (r *memRepo) Count(filter survey.ListFilter) (int, error) {
	list, err := r.List(filter)
	return len(list), err
}

func (r *memRepo) UpdateWebhookStatus(id string, status survey.WebhookStatus, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return survey.ErrSessionNotFound
	}
	r.webhooks[id] = status
	return nil
}

func (r *memRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// memCalls 内存 LLM 调用记录
type memCalls struct {
	mu    sync.Mutex
	calls []*llmcall.Call
}

func (m *memCalls) Save(c *llmcall.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.calls) + 1)
	m.calls = append(m.calls, c)
	return nil
}

func (m *memCalls) FindBySession(id string) ([]*llmcall.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*llmcall.Call
	for _, c := range m.calls {
		if c.SessionID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCalls) Stats(time.Time) ([]*llmcall.Stats, error) { return nil, nil }

func (m *memCalls) all() []*llmcall.Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*llmcall.Call(nil), m.calls...)
}

// syncBus 同步记录发布的事件
type syncBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *syncBus) Subscribe(events.EventType, events.Handler) func() { return func() {} }
func (b *syncBus) SubscribeMultiple([]events.EventType, events.Handler) func() {
	return func() {}
}
func (b *syncBus) Publish(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}
func (b *syncBus) Close() {}

func (b *syncBus) types() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.EventType, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type())
	}
	return out
}

// staticCatalog 固定目录
type staticCatalog struct{ c *survey.Catalog }

func (s staticCatalog) Current() *survey.Catalog { return s.c }

func testLLMConfig() *config.LLMConfig {
	return &config.LLMConfig{
		Provider:          "fake",
		TimeoutMs:         1000,
		PromptTokenBudget: 3000,
		Question:          config.TaskConfig{Temperature: 0.7, MaxTokens: 800, TimeoutMs: 1000},
		Report:            config.TaskConfig{Temperature: 0.7, MaxTokens: 2000, TimeoutMs: 1000},
	}
}

type fixture struct {
	provider *fakeProvider
	repo     *memRepo
	calls    *memCalls
	bus      *syncBus
	catalog  *survey.Catalog
	service  *Service
}

func newFixture(responses ...string) *fixture {
	f := &fixture{
		provider: &fakeProvider{responses: responses},
		repo:     newMemRepo(),
		calls:    &memCalls{},
		bus:      &syncBus{},
		catalog:  catalog.Default(),
	}
	src := staticCatalog{f.catalog}
	questions := NewQuestionGenerator(f.provider, testLLMConfig(), src, nil, f.calls)
	reports := NewReportGenerator(f.provider, testLLMConfig(), src, nil, f.calls)
	f.service = NewService(f.repo, src, questions, reports, f.bus)
	f.service.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func history(n int) []survey.ConversationEntry {
	out := make([]survey.ConversationEntry, n)
	for i := range out {
		out[i] = survey.ConversationEntry{Question: "¿Pregunta?", Answer: "Respuesta"}
	}
	return out
}
