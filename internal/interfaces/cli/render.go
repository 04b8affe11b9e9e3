package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/encuestaia/backend/internal/domain/survey"
)

// renderReport 把 Markdown 报告渲染为终端文本，渲染失败时原样返回
func renderReport(markdown string, width int) string {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// sessionRows 会话列表的表格行
func sessionRows(sessions []survey.SessionSummary) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		status := string(s.WebhookStatus)
		if s.WebhookError != "" {
			status += ": " + truncate(s.WebhookError, 30)
		}
		rows = append(rows, []string{
			s.ID,
			string(s.Stage),
			orDash(s.UserName),
			orDash(s.UserEmail),
			orDash(s.CompanyName),
			orDash(s.Sector),
			formatMillis(s.UpdatedAt),
			completedMark(s.Completed),
			orDash(status),
		})
	}
	return rows
}

// renderSessionTable 渲染会话列表
func renderSessionTable(sessions []survey.SessionSummary, total int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(primaryColor)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "ETAPA", "NOMBRE", "EMAIL", "EMPRESA", "SECTOR", "ACTUALIZADO", "INFORME", "WEBHOOK").
		Rows(sessionRows(sessions)...)

	return t.String() + "\n" + subtitleStyle.Render(fmt.Sprintf("%d de %d sesiones", len(sessions), total))
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func completedMark(done bool) string {
	if done {
		return "sí"
	}
	return "no"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
