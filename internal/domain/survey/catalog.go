package survey

import (
	"fmt"
	"strings"
)

// Sector 行业及其建议的低效任务
type Sector struct {
	Name  string   `json:"name" yaml:"name"`
	Match []string `json:"match" yaml:"match"` // 匹配受访者填写的行业的关键词（小写）
	Tasks []string `json:"tasks" yaml:"tasks"`
}

// Limits 对话长度限制
type Limits struct {
	// MaxHistory 达到后会话进入报告阶段
	MaxHistory int `json:"maxHistory" yaml:"max_history"`
	// HardLimit 达到后问题生成器不再调用模型
	HardLimit int `json:"hardLimit" yaml:"hard_limit"`
}

// Business 报告中署名的公司和成本估算
type Business struct {
	Name       string  `json:"name" yaml:"name"`
	HourlyCost float64 `json:"hourlyCost" yaml:"hourly_cost"`
}

// Catalog 问卷目录：开场问题、行业建议、频率选项、兜底问题和限制
type Catalog struct {
	OpeningQuestions []Question `json:"openingQuestions" yaml:"opening_questions"`
	Sectors          []Sector   `json:"sectors" yaml:"sectors"`
	GenericTasks     []string   `json:"genericTasks" yaml:"generic_tasks"`
	FrequencyOptions []string   `json:"frequencyOptions" yaml:"frequency_options"`
	FallbackQuestion string     `json:"fallbackQuestion" yaml:"fallback_question"`
	Limits           Limits     `json:"limits" yaml:"limits"`
	Business         Business   `json:"business" yaml:"business"`
}

// GenericSectorName 未匹配到行业时使用的名称
const GenericSectorName = "Genérico"

// Validate 校验目录是否可用
func (c *Catalog) Validate() error {
	if len(c.OpeningQuestions) == 0 {
		return fmt.Errorf("%w: no opening questions", ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(c.OpeningQuestions))
	for i, q := range c.OpeningQuestions {
		if q.ID == "" || q.Key == "" || strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: opening question %d needs id, key and text", ErrInvalidCatalog, i)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidCatalog, q.ID)
		}
		seen[q.ID] = true
		if q.Type.NeedsOptions() && len(q.Options) == 0 {
			return fmt.Errorf("%w: question %q of type %s has no options", ErrInvalidCatalog, q.ID, q.Type)
		}
	}
	if len(c.FrequencyOptions) == 0 {
		return fmt.Errorf("%w: no frequency options", ErrInvalidCatalog)
	}
	if strings.TrimSpace(c.FallbackQuestion) == "" {
		return fmt.Errorf("%w: empty fallback question", ErrInvalidCatalog)
	}
	if c.Limits.MaxHistory <= 0 || c.Limits.HardLimit < c.Limits.MaxHistory {
		return fmt.Errorf("%w: limits must satisfy 0 < max_history <= hard_limit", ErrInvalidCatalog)
	}
	return nil
}

// SuggestionsFor 返回与受访者行业匹配的建议任务；未匹配时返回通用列表
func (c *Catalog) SuggestionsFor(sector string) Sector {
	s := strings.ToLower(strings.TrimSpace(sector))
	if s != "" {
		for _, sec := range c.Sectors {
			for _, kw := range sec.Match {
				if kw != "" && strings.Contains(s, strings.ToLower(kw)) {
					return sec
				}
			}
		}
	}
	return Sector{Name: GenericSectorName, Tasks: c.GenericTasks}
}

// OpeningQuestionsCopy 返回开场问题的副本，避免会话修改共享的目录
func (c *Catalog) OpeningQuestionsCopy() []Question {
	out := make([]Question, len(c.OpeningQuestions))
	for i, q := range c.OpeningQuestions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
