// Package survey 定义对话式问卷的领域模型
package survey

import (
	"strings"
	"time"
)

// Phase 对话阶段；模型返回的阶段仅作参考，确定性的切换由护栏负责
type Phase string

const (
	PhaseBasicInfo        Phase = "basic_info"
	PhaseProblemDetection Phase = "problem_detection"
	PhaseTimeCalculation  Phase = "time_calculation"
	PhaseContextData      Phase = "context_data"
	PhaseResult           Phase = "result"
)

// 旧版 Express 提示词使用的阶段标签，仅在兼容接口上接受
const (
	PhaseTaskIdentification Phase = "task_identification"
	PhaseTaskAnalysis       Phase = "task_analysis"
	PhaseFrequencyAnalysis  Phase = "frequency_analysis"
	PhaseImpactAnalysis     Phase = "impact_analysis"
	PhaseReflection         Phase = "reflection"
)

// IsKnown 是否为当前流程的阶段
func (p Phase) IsKnown() bool {
	switch p {
	case PhaseBasicInfo, PhaseProblemDetection, PhaseTimeCalculation, PhaseContextData, PhaseResult:
		return true
	}
	return false
}

// IsLegacy 是否为旧版阶段标签
func (p Phase) IsLegacy() bool {
	switch p {
	case PhaseTaskIdentification, PhaseTaskAnalysis, PhaseFrequencyAnalysis, PhaseImpactAnalysis, PhaseReflection:
		return true
	}
	return false
}

// Stage 客户端界面阶段
type Stage string

const (
	StageWelcome Stage = "welcome"
	StageSurvey  Stage = "survey"
	StageReport  Stage = "report"
)

// QuestionType 问题输入类型
type QuestionType string

const (
	TypeText                QuestionType = "text"
	TypeNumber              QuestionType = "number"
	TypeTextarea            QuestionType = "textarea"
	TypeMultipleChoice      QuestionType = "multiple-choice"
	TypeCheckboxSuggestions QuestionType = "checkbox-suggestions"
	// TypeFrequency 仅出现在模型输出中，护栏会把它改写为 multiple-choice
	TypeFrequency QuestionType = "FREQUENCY_QUESTION"
)

// NormalizeType 把模型返回的类型规范化；未知或空类型视为 text
func NormalizeType(t string) QuestionType {
	switch qt := QuestionType(strings.TrimSpace(t)); qt {
	case TypeText, TypeNumber, TypeTextarea, TypeMultipleChoice, TypeCheckboxSuggestions, TypeFrequency:
		return qt
	}
	return TypeText
}

// NeedsOptions 该类型是否必须带选项
func (t QuestionType) NeedsOptions() bool {
	return t == TypeMultipleChoice || t == TypeCheckboxSuggestions
}

// FormData 字段名，与前端保持一致
const (
	KeyUserName    = "userName"
	KeyUserRole    = "userRole"
	KeyUserEmail   = "userEmail"
	KeyUserPhone   = "userPhone"
	KeyCompanyName = "companyName"
	KeySector      = "sector"
)

// Question 问卷中的一个问题
type Question struct {
	ID                 string       `json:"id" yaml:"id"`
	Phase              Phase        `json:"phase" yaml:"phase"`
	Text               string       `json:"text" yaml:"text"`
	Type               QuestionType `json:"type" yaml:"type"`
	Key                string       `json:"key" yaml:"key"` // FormData 字段名或 custom-<phase>-<n>
	Options            []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Optional           bool         `json:"optional,omitempty" yaml:"optional,omitempty"`
	Hint               string       `json:"hint,omitempty" yaml:"hint,omitempty"`
	NeedsClarification bool         `json:"needsClarification,omitempty" yaml:"-"`
}

// ConversationEntry 对话历史中的一问一答
type ConversationEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FormData 已收集的受访者数据
type FormData struct {
	UserName    string            `json:"userName,omitempty"`
	UserRole    string            `json:"userRole,omitempty"`
	UserEmail   string            `json:"userEmail,omitempty"`
	UserPhone   string            `json:"userPhone,omitempty"`
	CompanyName string            `json:"companyName,omitempty"`
	Sector      string            `json:"sector,omitempty"`
	Answers     map[string]string `json:"answers,omitempty"` // AI 问题的回答，按 Key 存储
}

// Set 按字段名写入回答
func (f *FormData) Set(key, value string) {
	switch key {
	case KeyUserName:
		f.UserName = value
	case KeyUserRole:
		f.UserRole = value
	case KeyUserEmail:
		f.UserEmail = value
	case KeyUserPhone:
		f.UserPhone = value
	case KeyCompanyName:
		f.CompanyName = value
	case KeySector:
		f.Sector = value
	default:
		if f.Answers == nil {
			f.Answers = make(map[string]string)
		}
		f.Answers[key] = value
	}
}

// Get 按字段名读取回答
func (f *FormData) Get(key string) string {
	switch key {
	case KeyUserName:
		return f.UserName
	case KeyUserRole:
		return f.UserRole
	case KeyUserEmail:
		return f.UserEmail
	case KeyUserPhone:
		return f.UserPhone
	case KeyCompanyName:
		return f.CompanyName
	case KeySector:
		return f.Sector
	}
	return f.Answers[key]
}

// Export 下载功能导出的内容
type Export struct {
	FormData            FormData            `json:"formData"`
	ConversationHistory []ConversationEntry `json:"conversationHistory"`
	Report              string              `json:"report"`
}

// ExportFilename 导出文件名：diagnostico-encuesta-ia-YYYY-MM-DD.json
func ExportFilename(now time.Time) string {
	return "diagnostico-encuesta-ia-" + now.UTC().Format("2006-01-02") + ".json"
}

// OrNA 空值渲染为 N/A
func OrNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}
