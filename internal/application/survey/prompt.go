package survey

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"text/template"

	"github.com/encuestaia/backend/internal/domain/survey"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return "[]"
		}
		return string(b)
	},
	"money": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}).ParseFS(promptFS, "prompts/*.tmpl"))

// questionPromptData 问题提示词的模板数据
type questionPromptData struct {
	CurrentPhase survey.Phase
	Sector       string
	Suggestions  survey.Sector
	Generic      survey.Sector
	Sectors      []survey.Sector
	History      []survey.ConversationEntry
	Trimmed      int
	OpeningCount int
	MaxHistory   int
	Legacy       bool
}

// reportPromptData 报告提示词的模板数据
type reportPromptData struct {
	CompanyName  string
	UserName     string
	UserRole     string
	History      []survey.ConversationEntry
	BusinessName string
	HourlyCost   float64
}

// renderPair 渲染 system 与 user 两段提示词
func renderPair(system, user string, data any) (string, string, error) {
	var sys, usr bytes.Buffer
	if err := prompts.ExecuteTemplate(&sys, system, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", system, err)
	}
	if err := prompts.ExecuteTemplate(&usr, user, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", user, err)
	}
	return sys.String(), usr.String(), nil
}
