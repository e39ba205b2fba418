package cmd

import (
	"strings"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/search"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const keywordNotFound = "Keyword Not Found"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	mediaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
)

// oneLine 折叠换行并按显示宽度截断
func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// highlight 命中片段加底色，其余原样输出
func highlight(spans []search.Span, base lipgloss.Style) string {
	var b strings.Builder
	for _, sp := range spans {
		if sp.Matched {
			b.WriteString(matchStyle.Render(sp.Text))
		} else {
			b.WriteString(base.Render(sp.Text))
		}
	}
	return b.String()
}

// mediaBadge .mp4 按视频展示，其余按图片
func mediaBadge(n *domain.Note) string {
	if !n.HasMedia() {
		return ""
	}
	kind := "[image]"
	if n.IsVideo() {
		kind = "[video]"
	}
	return mediaStyle.Render(kind + " " + n.MediaURL)
}

// renderNote 渲染一条笔记，先截断再高亮，避免切断转义序列
func renderNote(n *domain.Note, hl func(string) []search.Span, width int) string {
	lines := []string{
		highlight(hl(oneLine(n.Title, width)), titleStyle),
	}
	if n.Content != "" {
		lines = append(lines, highlight(hl(oneLine(n.Content, width)), lipgloss.NewStyle()))
	}
	if badge := mediaBadge(n); badge != "" {
		lines = append(lines, badge)
	}
	lines = append(lines, mutedStyle.Render(n.ID+"  "+n.CreatedAt.Local().Format("2006-01-02 15:04")))
	return strings.Join(lines, "\n")
}
