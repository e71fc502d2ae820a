package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"corkboard/internal/domain"
	"corkboard/internal/service"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8d6e47")).
			Padding(0, 1)
	panelTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d32f2f"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	taskDone    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	prioMarkers = map[domain.Priority]string{
		domain.PriorityHigh:   "!",
		domain.PriorityMedium: "·",
		domain.PriorityLow:    " ",
	}
)

func (m *Model) reloadTasks() {
	if m.tasks == nil {
		return
	}
	tasks, err := m.tasks.List(m.ctx)
	if err != nil {
		m.fail(err)
		return
	}
	open, done := service.Partition(tasks)
	m.taskList = append(open, done...)
	if m.taskCursor >= len(m.taskList) {
		m.taskCursor = max(len(m.taskList)-1, 0)
	}
}

// handleTaskKey handles keys owned by the task panel while it is open.
func (m *Model) handleTaskKey(key string) bool {
	if m.tasks == nil {
		return false
	}
	switch key {
	case "j":
		if m.taskCursor < len(m.taskList)-1 {
			m.taskCursor++
		}
	case "k":
		if m.taskCursor > 0 {
			m.taskCursor--
		}
	case "a":
		m.input = newLineEditor(inputTask, "task (!high -low): ")
	case " ", "space":
		if t, ok := m.cursorTask(); ok {
			if _, err := m.tasks.Toggle(m.ctx, t.ID); err != nil {
				m.fail(err)
			}
		}
	case "D":
		if t, ok := m.cursorTask(); ok {
			if err := m.tasks.Delete(m.ctx, t.ID); err != nil {
				m.fail(err)
			}
		}
	default:
		return false
	}
	return true
}

func (m *Model) cursorTask() (domain.Task, bool) {
	if m.taskCursor < 0 || m.taskCursor >= len(m.taskList) {
		return domain.Task{}, false
	}
	return m.taskList[m.taskCursor], true
}

func (m *Model) taskPanel(rows int) string {
	inner := panelWidth - 4
	lines := []string{panelTitle.Render("TO-DO"), ""}
	open := 0
	for _, t := range m.taskList {
		if !t.Done {
			open++
		}
	}
	for i, t := range m.taskList {
		check := "[ ]"
		if t.Done {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", check, prioMarkers[t.Priority], t.Text)
		if len([]rune(line)) > inner {
			line = string([]rune(line)[:inner-1]) + "…"
		}
		if t.Done {
			line = taskDone.Render(line)
		}
		if i == m.taskCursor {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", fmt.Sprintf("%d open, %d done", open, len(m.taskList)-open))

	h := rows - 2
	if h < 1 {
		h = 1
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	return panelStyle.Width(inner).Height(h).Render(strings.Join(lines, "\n"))
}
