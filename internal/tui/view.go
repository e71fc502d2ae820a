package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().Background(lipgloss.Color("#3e2723")).Foreground(lipgloss.Color("#ffecb3"))
	errorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#b71c1c")).Foreground(lipgloss.Color("#ffffff")).Bold(true)
	modeStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#d32f2f")).Foreground(lipgloss.Color("#ffffff")).Bold(true).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#d32f2f")).
			Padding(1, 2)
	editorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ffb300")).
			Padding(0, 1)
)

const noteEditorWidth = 48

const helpText = `CORKBOARD

mouse   drag an item to move it, drag ↻ to rotate
        click a note twice to edit it
n       new note          i   pin a photo (path or URL)
p       paste clipboard   l   toggle link mode
e       edit selected     f   bring to front
ctrl+s  save an edit      esc cancel it
d       delete selected   C   clear the board
x / X   export PNG / SVG  t   task panel
arrows  pan               0   reset view
esc     deselect          q   quit

task panel: j/k move, a add, space toggle, D delete

press any key`

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	canvasW, rows := m.canvasSize()
	if m.help {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpStyle.Render(helpText))
	}

	if m.input != nil && m.input.multiline() {
		box := editorStyle.Render("EDIT NOTE\n\n" + m.input.view())
		return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, box) + "\n" + m.statusLine()
	}

	g := drawScene(m.board.Scene(m.selected), m.vp, canvasW, rows)
	canvas := strings.Join(g.lines(), "\n")
	if m.showTasks {
		canvas = lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.taskPanel(rows))
	}
	return canvas + "\n" + m.statusLine()
}

func (m *Model) statusLine() string {
	mode := modeStyle.Render(strings.ToUpper(m.ctrl.Mode().String()))
	state := m.board.State()

	var msg string
	switch {
	case m.input != nil && m.input.multiline():
		msg = "enter new line  ctrl+s save  esc cancel"
	case m.input != nil:
		msg = m.input.view()
	case m.pendingLink != nil:
		msg = "string type: [s]traight  [c]urved  (any other key cancels)"
	case m.confirmClear:
		msg = fmt.Sprintf("remove all %d items and %d strings? [y/N]", len(state.Items), len(state.Connections))
	case m.status != "":
		msg = m.status
	case m.toolbar != "":
		msg = "[e]dit  [f]ront  [d]elete  [l]ink"
	default:
		msg = fmt.Sprintf("%d items, %d strings  ? for help", len(state.Items), len(state.Connections))
	}

	style := statusStyle
	if m.statusErr && m.input == nil && m.pendingLink == nil && !m.confirmClear {
		style = errorStyle
	}
	w := m.width - lipgloss.Width(mode)
	if w < 0 {
		w = 0
	}
	return mode + style.Width(w).MaxWidth(w).Render(" "+msg)
}
