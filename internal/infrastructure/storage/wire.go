package storage

import (
	"github.com/encuestaia/backend/internal/domain/llmcall"
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/google/wire"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,                        // 提供数据库连接
	NewSurveySessionRepository,       // 问卷会话仓储
	NewLLMCallRepository,             // LLM 调用记录仓储
	wire.Bind(new(survey.Repository), new(*SurveySessionRepository)),
	wire.Bind(new(llmcall.Repository), new(*LLMCallRepository)),
)
