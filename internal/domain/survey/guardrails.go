package survey

import (
	"fmt"
	"strings"
)

// frequencyMarker 频率类问题的文本特征
const frequencyMarker = "con qué frecuencia"

// GeneratedQuestion 问题生成器的输出
type GeneratedQuestion struct {
	Question           string       `json:"question"`
	Phase              Phase        `json:"phase"`
	Type               QuestionType `json:"type,omitempty"`
	Options            []string     `json:"options,omitempty"`
	Optional           bool         `json:"optional,omitempty"`
	Hint               string       `json:"hint,omitempty"`
	ConfidenceScore    *float64     `json:"confidenceScore,omitempty"`
	NeedsClarification bool         `json:"needsClarification,omitempty"`
	// Fallback 为 true 表示模型输出不可用，使用了兜底问题
	Fallback bool `json:"-"`
}

// IsTerminal 模型是否表示对话已结束
func (g *GeneratedQuestion) IsTerminal() bool {
	return g.Phase == PhaseResult || strings.TrimSpace(g.Question) == ""
}

// Validate 校验模型输出；allowLegacy 控制是否接受旧版阶段标签
func (g *GeneratedQuestion) Validate(allowLegacy bool) error {
	if !g.Phase.IsKnown() && !(allowLegacy && g.Phase.IsLegacy()) {
		return fmt.Errorf("unknown phase %q", g.Phase)
	}
	if g.IsTerminal() {
		return nil
	}
	if g.Type.NeedsOptions() && len(g.Options) == 0 {
		return fmt.Errorf("type %s requires non-empty options", g.Type)
	}
	return nil
}

// ApplyGuardrails 对模型输出应用确定性规则：
// 类型规范化，频率问题改写为带固定选项的 multiple-choice
func (g *GeneratedQuestion) ApplyGuardrails(frequencyOptions []string) {
	g.Type = NormalizeType(string(g.Type))
	if g.Type == TypeFrequency || strings.Contains(strings.ToLower(g.Question), frequencyMarker) {
		g.Type = TypeMultipleChoice
		g.Options = append([]string(nil), frequencyOptions...)
	}
}

// ResultQuestion 表示对话结束的输出
func ResultQuestion() GeneratedQuestion {
	return GeneratedQuestion{Question: "", Phase: PhaseResult}
}

// FallbackQuestion 模型输出不可用时的兜底问题
func FallbackQuestion(text string, phase Phase) GeneratedQuestion {
	if !phase.IsKnown() && !phase.IsLegacy() {
		phase = PhaseBasicInfo
	}
	return GeneratedQuestion{
		Question: text,
		Phase:    phase,
		Type:     TypeTextarea,
		Fallback: true,
	}
}

// ShouldFinish 会话是否应进入报告阶段
func ShouldFinish(g *GeneratedQuestion, historyLen, maxHistory int) bool {
	return g.IsTerminal() || historyLen >= maxHistory
}

// ToQuestion 把生成的问题转换为会话中的问题，n 为当前历史长度
func (g *GeneratedQuestion) ToQuestion(historyLen int) Question {
	n := historyLen + 1
	return Question{
		ID:                 fmt.Sprintf("q-ai-%d", n),
		Phase:              g.Phase,
		Text:               g.Question,
		Type:               g.Type,
		Key:                fmt.Sprintf("custom-%s-%d", g.Phase, n),
		Options:            g.Options,
		Optional:           g.Optional,
		Hint:               g.Hint,
		NeedsClarification: g.NeedsClarification,
	}
}
