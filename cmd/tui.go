package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/search"
	"github.com/dejay09121/Noteapp/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// viewChangedMsg 集合、搜索结果或选择状态变化，渲染时从 NotesView 重新读取
type viewChangedMsg struct{}

type errMsg struct{ err error }

type statusMsg string

// watchModel 终端笔记列表
type watchModel struct {
	ctx  context.Context
	sync service.SyncService
	view *service.NotesView

	cursor    int
	searching bool
	input     []rune
	status    string
	err       error
	width     int
	height    int
}

func newWatchModel(ctx context.Context, sync service.SyncService) *watchModel {
	return &watchModel{ctx: ctx, sync: sync, width: 80, height: 24}
}

// bind 创建视图并把事件转发给 send；send 可能在 Update 内被调用，需异步投递
func (m *watchModel) bind(send func(tea.Msg)) {
	notify := func() {
		if send != nil {
			go send(viewChangedMsg{})
		}
	}
	m.view = service.NewNotesView(m.sync.Store(), m.sync.Selection(), service.ViewListenerFuncs{
		NotesChanged:         func([]*domain.Note) { notify() },
		SearchResultsChanged: func([]*domain.Note, string) { notify() },
		SelectionChanged:     func([]string, bool) { notify() },
	})
}

func (m *watchModel) Init() tea.Cmd {
	return func() tea.Msg {
		if err := m.sync.Start(m.ctx); err != nil {
			return errMsg{err}
		}
		return viewChangedMsg{}
	}
}

func (m *watchModel) refresh(trigger string) tea.Cmd {
	return func() tea.Msg {
		if err := m.sync.RefreshWithTrigger(m.ctx, trigger); err != nil {
			return errMsg{err}
		}
		return statusMsg("refreshed")
	}
}

func (m *watchModel) deleteSelected() tea.Cmd {
	n := m.sync.Selection().Len()
	return func() tea.Msg {
		if err := m.sync.DeleteSelected(m.ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("deleted %d note(s)", n))
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.FocusMsg:
		return m, m.refresh(service.TriggerFocus)
	case viewChangedMsg:
		m.clampCursor()
		return m, nil
	case statusMsg:
		m.status, m.err = string(msg), nil
		m.clampCursor()
		return m, nil
	case errMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *watchModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = m.input[:0]
	case tea.KeyRunes, tea.KeySpace:
		m.input = append(m.input, msg.Runes...)
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			m.input = append(m.input, ' ')
		}
	default:
		return m, nil
	}
	m.view.SetSearchTerm(string(m.input))
	m.cursor = 0
	return m, nil
}

func (m *watchModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.view.Results()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
	case "esc":
		switch {
		case m.view.DeleteMode():
			m.view.ExitDeleteMode()
		case len(m.input) > 0:
			m.input = m.input[:0]
			m.view.ClearSearch()
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(results)-1 {
			m.cursor++
		}
	case "r":
		return m, m.refresh(service.TriggerManual)
	case "d":
		if m.view.DeleteMode() {
			m.view.ExitDeleteMode()
		} else {
			m.view.EnterDeleteMode()
		}
	case " ":
		if m.view.DeleteMode() && m.cursor < len(results) {
			m.view.ToggleSelect(results[m.cursor].ID)
		}
	case "enter", "x":
		if m.view.DeleteMode() {
			return m, m.deleteSelected()
		}
	}
	return m, nil
}

func (m *watchModel) clampCursor() {
	if n := len(m.view.Results()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *watchModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("Notes (%d)", m.sync.Store().Len())
	if m.view.DeleteMode() {
		header += errorStyle.Render(fmt.Sprintf("  DELETE MODE  %d selected", m.sync.Selection().Len()))
	}
	b.WriteString(titleStyle.Render(header) + "\n")

	prompt := mutedStyle.Render("/ search")
	if m.searching || len(m.input) > 0 {
		prompt = "/ " + string(m.input)
		if m.searching {
			prompt += cursorStyle.Render("_")
		}
	}
	b.WriteString(prompt + "\n\n")

	if m.view.KeywordNotFound() {
		b.WriteString(mutedStyle.Render(keywordNotFound) + "\n")
	} else {
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status) + "\n")
	}
	help := "/ search · j/k move · d delete mode · r refresh · q quit"
	if m.view.DeleteMode() {
		help = "space select · enter delete · esc cancel"
	}
	b.WriteString(mutedStyle.Render(help))
	return b.String()
}

func (m *watchModel) renderList() string {
	results := m.view.Results()
	// 每条笔记约占 4 行
	visible := max((m.height-6)/4, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(results))

	width := max(m.width-4, 10)
	var rows []string
	for i := start; i < end; i++ {
		n := results[i]
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		if m.view.DeleteMode() {
			if m.sync.Selection().IsSelected(n.ID) {
				marker += "[x] "
			} else {
				marker += "[ ] "
			}
		}
		body := renderNote(n, m.highlighter(), width)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, marker, body))
	}
	return strings.Join(rows, "\n") + "\n"
}

func (m *watchModel) highlighter() func(string) []search.Span {
	return m.view.Highlight
}
