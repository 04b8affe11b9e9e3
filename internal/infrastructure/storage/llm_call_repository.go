package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/encuestaia/backend/internal/domain/llmcall"
)

// LLMCallRepository LLM 调用记录 SQLite 仓储
type LLMCallRepository struct {
	db *sql.DB
}

// NewLLMCallRepository 创建 LLM 调用记录仓储实例
func NewLLMCallRepository(db *sql.DB) (*LLMCallRepository, error) {
	if err := initLLMCallTable(db); err != nil {
		return nil, err
	}
	return &LLMCallRepository{db: db}, nil
}

// initLLMCallTable 初始化 LLM 调用记录表
func initLLMCallTable(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS llm_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL DEFAULT '',
		task TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		fallback INTEGER NOT NULL DEFAULT 0,
		error_code TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create llm_calls table: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_llm_calls_session ON llm_calls(session_id);
	CREATE INDEX IF NOT EXISTS idx_llm_calls_created_at ON llm_calls(created_at);
	`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create llm_calls indexes: %w", err)
	}

	return nil
}

// Save 保存调用记录
func (r *LLMCallRepository) Save(call *llmcall.Call) error {
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now()
	}

	res, err := r.db.Exec(`
		INSERT INTO llm_calls
		(session_id, task, provider, model, prompt_tokens, completion_tokens, latency_ms,
		 success, fallback, error_code, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		call.SessionID,
		call.Task,
		call.Provider,
		call.Model,
		call.PromptTokens,
		call.CompletionTokens,
		call.LatencyMs,
		boolToInt(call.Success),
		boolToInt(call.Fallback),
		call.ErrorCode,
		call.Error,
		call.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save llm call: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		call.ID = id
	}
	return nil
}

// FindBySession 按时间顺序返回会话的调用记录
func (r *LLMCallRepository) FindBySession(sessionID string) ([]*llmcall.Call, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, task, provider, model, prompt_tokens, completion_tokens,
		       latency_ms, success, fallback, error_code, error, created_at
		FROM llm_calls
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query llm calls: %w", err)
	}
	defer rows.Close()

	var calls []*llmcall.Call
	for rows.Next() {
		var (
			c                 llmcall.Call
			success, fallback int
			createdAt         int64
		)
		if err := rows.Scan(
			&c.ID, &c.SessionID, &c.Task, &c.Provider, &c.Model, &c.PromptTokens, &c.CompletionTokens,
			&c.LatencyMs, &success, &fallback, &c.ErrorCode, &c.Error, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan llm call: %w", err)
		}
		c.Success = success == 1
		c.Fallback = fallback == 1
		c.CreatedAt = time.UnixMilli(createdAt)
		calls = append(calls, &c)
	}

	return calls, rows.Err()
}

// Stats 按任务、提供商和模型聚合
func (r *LLMCallRepository) Stats(since time.Time) ([]*llmcall.Stats, error) {
	var sinceMs int64
	if !since.IsZero() {
		sinceMs = since.UnixMilli()
	}

	rows, err := r.db.Query(`
		SELECT task, provider, model,
		       COUNT(*),
		       SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END),
		       SUM(fallback),
		       AVG(latency_ms),
		       SUM(prompt_tokens),
		       SUM(completion_tokens)
		FROM llm_calls
		WHERE created_at >= ?
		GROUP BY task, provider, model
		ORDER BY task, provider, model`, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("failed to query llm stats: %w", err)
	}
	defer rows.Close()

	var out []*llmcall.Stats
	for rows.Next() {
		var s llmcall.Stats
		if err := rows.Scan(
			&s.Task, &s.Provider, &s.Model, &s.Calls, &s.Failures, &s.Fallbacks,
			&s.AvgLatencyMs, &s.TotalPromptTokens, &s.TotalCompletionTokens,
		); err != nil {
			return nil, fmt.Errorf("failed to scan llm stats: %w", err)
		}
		out = append(out, &s)
	}

	return out, rows.Err()
}

var _ llmcall.Repository = (*LLMCallRepository)(nil)
