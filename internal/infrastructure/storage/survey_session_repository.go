package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/google/uuid"
)

// SurveySessionRepository 问卷会话 SQLite 仓储
// 完整状态以 JSON 存在 state 列，检索用的字段单独成列
type SurveySessionRepository struct {
	db *sql.DB
}

// NewSurveySessionRepository 创建问卷会话仓储实例
func NewSurveySessionRepository(db *sql.DB) (*SurveySessionRepository, error) {
	if err := initSurveySessionTable(db); err != nil {
		return nil, err
	}
	return &SurveySessionRepository{db: db}, nil
}

// initSurveySessionTable 初始化问卷会话表
func initSurveySessionTable(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS survey_sessions (
		id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		state TEXT NOT NULL,
		user_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		sector TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0,
		webhook_status TEXT NOT NULL DEFAULT '',
		webhook_error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		completed_at INTEGER
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create survey_sessions table: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_survey_sessions_updated_at ON survey_sessions(updated_at);
	CREATE INDEX IF NOT EXISTS idx_survey_sessions_completed ON survey_sessions(completed);
	`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create survey_sessions indexes: %w", err)
	}

	return nil
}

// Save 保存会话（upsert，不覆盖 webhook 状态）
func (r *SurveySessionRepository) Save(s *survey.Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	state, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	var completedAt sql.NullInt64
	if s.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: s.CompletedAt.UnixMilli(), Valid: true}
	}

	query := `
		INSERT INTO survey_sessions
		(id, stage, state, user_name, email, phone, company, sector, completed, created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage = excluded.stage,
			state = excluded.state,
			user_name = excluded.user_name,
			email = excluded.email,
			phone = excluded.phone,
			company = excluded.company,
			sector = excluded.sector,
			completed = excluded.completed,
			updated_at = excluded.updated_at,
			completed_at = excluded.completed_at`

	_, err = r.db.Exec(query,
		s.ID,
		string(s.Stage),
		string(state),
		s.FormData.UserName,
		s.FormData.UserEmail,
		s.FormData.UserPhone,
		s.FormData.CompanyName,
		s.FormData.Sector,
		boolToInt(s.IsCompleted()),
		s.CreatedAt.UnixMilli(),
		s.UpdatedAt.UnixMilli(),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save survey session: %w", err)
	}

	return nil
}

// FindByID 根据 ID 查找会话
func (r *SurveySessionRepository) FindByID(id string) (*survey.Session, error) {
	var state string
	err := r.db.QueryRow(`SELECT state FROM survey_sessions WHERE id = ?`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, survey.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query survey session: %w", err)
	}

	var s survey.Session
	if err := json.Unmarshal([]byte(state), &s); err != nil {
		return nil, fmt.Errorf("failed to decode survey session %s: %w", id, err)
	}
	return &s, nil
}

// whereClause 根据过滤条件构建 WHERE 子句
func whereClause(filter survey.ListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Completed != nil {
		conds = append(conds, "completed = ?")
		args = append(args, boolToInt(*filter.Completed))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List 按更新时间倒序分页列出会话摘要
func (r *SurveySessionRepository) List(filter survey.ListFilter) ([]*survey.SessionSummary, error) {
	where, args := whereClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, stage, user_name, email, phone, company, sector, completed,
		       webhook_status, webhook_error, created_at, updated_at, completed_at
		FROM survey_sessions` + where + `
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list survey sessions: %w", err)
	}
	defer rows.Close()

	var out []*survey.SessionSummary
	for rows.Next() {
		var (
			s           survey.SessionSummary
			stage       string
			completed   int
			webhook     string
			completedAt sql.NullInt64
		)
		if err := rows.Scan(
			&s.ID, &stage, &s.UserName, &s.UserEmail, &s.UserPhone, &s.CompanyName, &s.Sector,
			&completed, &webhook, &s.WebhookError, &s.CreatedAt, &s.UpdatedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan survey session: %w", err)
		}
		s.Stage = survey.Stage(stage)
		s.Completed = completed == 1
		s.WebhookStatus = survey.WebhookStatus(webhook)
		if completedAt.Valid {
			s.CompletedAt = completedAt.Int64
		}
		out = append(out, &s)
	}

	return out, rows.Err()
}

// Count 统计满足条件的会话数
func (r *SurveySessionRepository) Count(filter survey.ListFilter) (int, error) {
	where, args := whereClause(filter)

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM survey_sessions`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count survey sessions: %w", err)
	}
	return n, nil
}

// UpdateWebhookStatus 记录线索推送结果
func (r *SurveySessionRepository) UpdateWebhookStatus(id string, status survey.WebhookStatus, errMsg string) error {
	res, err := r.db.Exec(
		`UPDATE survey_sessions SET webhook_status = ?, webhook_error = ? WHERE id = ?`,
		string(status), errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update webhook status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return survey.ErrSessionNotFound
	}
	return nil
}

// Delete 删除会话
func (r *SurveySessionRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM survey_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete survey session: %w", err)
	}
	return nil
}

var _ survey.Repository = (*SurveySessionRepository)(nil)
