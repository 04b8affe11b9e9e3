package survey

import "errors"

var (
	// ErrSessionNotFound 会话不存在
	ErrSessionNotFound = errors.New("survey session not found")
	// ErrNoCurrentQuestion 当前没有待回答的问题
	ErrNoCurrentQuestion = errors.New("no current question")
	// ErrAnswerRequired 非可选问题的回答为空
	ErrAnswerRequired = errors.New("answer required")
	// ErrInvalidStage 当前界面阶段不允许该操作
	ErrInvalidStage = errors.New("operation not allowed in current stage")
	// ErrStaleAnswer 提交的回答对应的问题已不是当前问题
	ErrStaleAnswer = errors.New("answer refers to a question that is no longer current")
	// ErrEmailRequired 生成报告前必须填写邮箱
	ErrEmailRequired = errors.New("email required")
	// ErrConsentRequired 生成报告前必须同意条款
	ErrConsentRequired = errors.New("consent required")
	// ErrInvalidCatalog 问卷目录不合法
	ErrInvalidCatalog = errors.New("invalid survey catalog")
)
