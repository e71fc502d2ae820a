package tui

import (
	"html"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"corkboard/internal/domain"
	"corkboard/internal/interaction"
)

type inputPurpose int

const (
	inputEdit inputPurpose = iota
	inputPhoto
	inputTask
)

// editor is the open text prompt. Photo and task prompts are one line in the
// status bar; note edits get a multi-line area where enter breaks the line
// and ctrl+s saves.
type editor struct {
	purpose inputPurpose
	itemID  string
	line    textinput.Model
	area    textarea.Model
}

func newLineEditor(p inputPurpose, prompt string) *editor {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.CharLimit = 2048
	ti.Focus()
	return &editor{purpose: p, line: ti}
}

func newNoteEditor(itemID, initial string) *editor {
	ta := textarea.New()
	ta.Placeholder = "What do you know?"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(noteEditorWidth)
	ta.SetHeight(8)
	ta.SetValue(initial)
	ta.Focus()
	return &editor{purpose: inputEdit, itemID: itemID, area: ta}
}

func (e *editor) multiline() bool { return e.purpose == inputEdit }

func (e *editor) value() string {
	if e.multiline() {
		return e.area.Value()
	}
	return e.line.Value()
}

func (e *editor) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if e.multiline() {
		e.area, cmd = e.area.Update(msg)
	} else {
		e.line, cmd = e.line.Update(msg)
	}
	return cmd
}

func (e *editor) view() string {
	if e.multiline() {
		return e.area.View()
	}
	return e.line.View()
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	in := m.input
	switch msg.String() {
	case "esc":
		m.input = nil
		return nil
	case "ctrl+s":
		m.input = nil
		m.submit(in)
		return nil
	case "enter":
		if !in.multiline() {
			m.input = nil
			m.submit(in)
			return nil
		}
	}
	return in.update(msg)
}

func (m *Model) submit(in *editor) {
	switch in.purpose {
	case inputEdit:
		m.handle(interaction.ContentInput{ItemID: in.itemID, HTML: textToHTML(in.value())})
	case inputPhoto:
		m.addPhoto(strings.TrimSpace(in.value()), "")
	case inputTask:
		text, prio := parseTask(in.value())
		if _, err := m.tasks.Add(m.ctx, text, prio); err != nil {
			m.fail(err)
		}
	}
}

// textToHTML turns typed text into note markup.
func textToHTML(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}

// parseTask reads a leading "!" as high priority and "-" as low.
func parseTask(s string) (string, domain.Priority) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "!"):
		return strings.TrimSpace(s[1:]), domain.PriorityHigh
	case strings.HasPrefix(s, "-"):
		return strings.TrimSpace(s[1:]), domain.PriorityLow
	}
	return s, domain.PriorityMedium
}
