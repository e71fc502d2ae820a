package tui

import (
	"context"
	"math/rand"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/interaction"
	"corkboard/internal/service"
	"corkboard/internal/storage"
)

func newTestModel(t *testing.T, items ...domain.Item) *Model {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	events := NewEvents(16)
	store := board.New(board.Options{Rand: rand.New(rand.NewSource(1))})
	svc := service.NewBoardService(store, storage.NewBoardRepository(kv, ""), events, nil)
	require.NoError(t, svc.Load(ctx))
	require.NoError(t, svc.Replace(ctx, domain.BoardState{Items: items}))
	tasks := service.NewTaskService(storage.NewTaskRepository(kv, ""), events)

	m := New(ctx, Options{Board: svc, Tasks: tasks, Events: events, ExportDir: t.TempDir()})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		if r == ' ' {
			m.Update(key("space"))
			continue
		}
		m.Update(key(string(r)))
	}
}

func mouse(typ tea.MouseEventType, col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Type: typ}
}

func note(id string, x, y float64) domain.Item {
	return domain.Item{ID: id, Type: domain.ItemTypeNote, X: x, Y: y, Width: 160, ZIndex: 1, Content: id}
}

func (m *Model) boxOf(t *testing.T, id string) box {
	t.Helper()
	for _, iv := range m.board.Scene(nil).Items {
		if iv.Item.ID == id {
			return m.vp.boxFor(iv.Frame)
		}
	}
	t.Fatalf("item %s not in scene", id)
	return box{}
}

func TestModel_DragMovesItem(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64))
	b := m.boxOf(t, "a")

	m.Update(mouse(tea.MouseLeft, b.left, b.top+1))
	assert.True(t, m.selected["a"])
	assert.Equal(t, "a", m.toolbar)

	m.Update(mouse(tea.MouseMotion, b.left+5, b.top+3))
	m.Update(mouse(tea.MouseRelease, b.left+5, b.top+3))

	it, ok := m.board.Item("a")
	require.True(t, ok)
	assert.InDelta(t, 80+5*cellW, it.X, 0.001)
	assert.InDelta(t, 64+2*cellH, it.Y, 0.001)
	assert.Equal(t, interaction.Idle, m.ctrl.State().Phase)
}

func TestModel_ReleaseOutsideCanvasEndsDrag(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64))
	b := m.boxOf(t, "a")

	m.Update(mouse(tea.MouseLeft, b.left, b.top+1))
	m.Update(mouse(tea.MouseMotion, b.left+5, b.top+3))
	require.Equal(t, interaction.Dragging, m.ctrl.State().Phase)

	// Row 29 is the status bar of a 30 row terminal.
	m.Update(mouse(tea.MouseRelease, b.left+5, 29))
	assert.Equal(t, interaction.Idle, m.ctrl.State().Phase)

	m.Update(mouse(tea.MouseLeft, 119, 0))
	m.Update(mouse(tea.MouseRelease, 119, 0))
	assert.Empty(t, m.toolbar)
	assert.Empty(t, m.selected)
}

func TestModel_PressOutsideCanvasIgnored(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64))
	m.toolbar = "a"
	m.Update(mouse(tea.MouseLeft, 10, 29))
	assert.Equal(t, "a", m.toolbar)
	assert.Equal(t, interaction.Idle, m.ctrl.State().Phase)
}

func TestModel_ReleaseReachesControllerUnderModal(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64))
	b := m.boxOf(t, "a")

	m.Update(mouse(tea.MouseLeft, b.left, b.top+1))
	m.Update(key("i"))
	require.NotNil(t, m.input)
	m.Update(mouse(tea.MouseRelease, b.left, b.top+1))
	assert.Equal(t, interaction.Idle, m.ctrl.State().Phase)
	assert.NotNil(t, m.input)
}

func TestModel_LinkModeDefersPrompt(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64), note("b", 480, 64))

	m.Update(key("l"))
	assert.Equal(t, interaction.ModeLink, m.ctrl.Mode())

	ab, bb := m.boxOf(t, "a"), m.boxOf(t, "b")
	m.Update(mouse(tea.MouseLeft, ab.left+2, ab.top+1))
	m.Update(mouse(tea.MouseRelease, ab.left+2, ab.top+1))
	m.Update(mouse(tea.MouseLeft, bb.left+2, bb.top+1))

	require.NotNil(t, m.pendingLink)
	assert.Equal(t, linkPrompt{from: "a", to: "b"}, *m.pendingLink)
	assert.Contains(t, m.View(), "[s]traight")

	// Mouse input is ignored while the dialog is open.
	m.Update(mouse(tea.MouseLeft, 0, 0))
	require.NotNil(t, m.pendingLink)

	m.Update(key("c"))
	assert.Nil(t, m.pendingLink)
	conns := m.board.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "a", conns[0].From)
	assert.Equal(t, "b", conns[0].To)
	assert.Equal(t, domain.ConnectionCurved, conns[0].Type)
}

func TestModel_LinkPromptCancel(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64), note("b", 480, 64))
	m.Update(key("l"))
	ab, bb := m.boxOf(t, "a"), m.boxOf(t, "b")
	m.Update(mouse(tea.MouseLeft, ab.left, ab.top+1))
	m.Update(mouse(tea.MouseLeft, bb.left, bb.top+1))
	require.NotNil(t, m.pendingLink)

	m.Update(key("esc"))
	assert.Nil(t, m.pendingLink)
	assert.Empty(t, m.board.Connections())
}

func TestModel_ClearNeedsConfirmation(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64))

	m.Update(key("C"))
	require.True(t, m.confirmClear)
	m.Update(key("n"))
	assert.Len(t, m.board.State().Items, 1)

	m.Update(key("C"))
	m.Update(key("y"))
	assert.Empty(t, m.board.State().Items)
	assert.False(t, m.confirmClear)
}

func TestModel_EditSelectedNote(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64))
	b := m.boxOf(t, "a")
	m.Update(mouse(tea.MouseLeft, b.left+2, b.top+1))
	require.Equal(t, "a", m.toolbar)

	m.Update(key("e"))
	require.NotNil(t, m.input)
	assert.Equal(t, "a", m.input.value())

	m.Update(key("backspace"))
	typeText(m, "<b> & c")
	m.Update(key("enter"))
	require.NotNil(t, m.input, "enter breaks the line in a note")
	typeText(m, "d")
	assert.Contains(t, m.View(), "EDIT NOTE")
	m.Update(key("ctrl+s"))
	assert.Nil(t, m.input)

	it, _ := m.board.Item("a")
	assert.Equal(t, "&lt;b&gt; &amp; c<br>d", it.Content)
}

func TestModel_EditCancelKeepsContent(t *testing.T) {
	m := newTestModel(t, note("a", 80, 64))
	m.toolbar = "a"
	m.Update(key("e"))
	typeText(m, "zz")
	m.Update(key("esc"))
	assert.Nil(t, m.input)

	it, _ := m.board.Item("a")
	assert.Equal(t, "a", it.Content)
}

func TestModel_PhotoPromptIsOneLine(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("i"))
	require.NotNil(t, m.input)
	assert.False(t, m.input.multiline())
	typeText(m, "https://example.com/suspect.jpg")
	assert.Contains(t, m.View(), "photo path or URL: ")
	m.Update(key("enter"))

	assert.Nil(t, m.input)
	items := m.board.State().Items
	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemTypePhoto, items[0].Type)
	assert.Equal(t, "https://example.com/suspect.jpg", items[0].Image)
}

func TestModel_AddNoteAndDelete(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("n"))
	items := m.board.State().Items
	require.Len(t, items, 1)

	m.toolbar = items[0].ID
	m.Update(key("d"))
	assert.Empty(t, m.board.State().Items)
	assert.Empty(t, m.toolbar)
}

func TestModel_TaskPanel(t *testing.T) {
	m := newTestModel(t)
	m.Update(key("t"))
	require.True(t, m.showTasks)
	require.Len(t, m.taskList, 3)
	assert.False(t, m.taskList[0].Done)
	assert.True(t, m.taskList[2].Done)

	m.Update(key("a"))
	require.NotNil(t, m.input)
	typeText(m, "!check alibi")
	m.Update(key("enter"))

	m.reloadTasks()
	require.Len(t, m.taskList, 4)
	added := m.taskList[2]
	assert.Equal(t, "check alibi", added.Text)
	assert.Equal(t, domain.PriorityHigh, added.Priority)

	m.taskCursor = 0
	m.Update(key("space"))
	m.reloadTasks()
	open, done := service.Partition(m.taskList)
	assert.Len(t, open, 2)
	assert.Len(t, done, 2)

	m.Update(key("D"))
	m.reloadTasks()
	assert.Len(t, m.taskList, 3)
	assert.Contains(t, m.View(), "TO-DO")
}

func TestParseTask(t *testing.T) {
	cases := map[string]struct {
		text string
		prio domain.Priority
	}{
		"!call the widow": {"call the widow", domain.PriorityHigh},
		"- file report":   {"file report", domain.PriorityLow},
		"  dust prints ":  {"dust prints", domain.PriorityMedium},
	}
	for in, want := range cases {
		text, prio := parseTask(in)
		assert.Equal(t, want.text, text, in)
		assert.Equal(t, want.prio, prio, in)
	}
}

func TestLooksLikeImage(t *testing.T) {
	assert.True(t, looksLikeImage("data:image/png;base64,AAAA"))
	assert.True(t, looksLikeImage("https://example.com/suspect.JPG?size=large"))
	assert.True(t, looksLikeImage("/tmp/evidence.png"))
	assert.False(t, looksLikeImage("https://example.com/article"))
	assert.False(t, looksLikeImage("saw him at\nthe dock.png"))
}

func TestTextToHTML(t *testing.T) {
	assert.Equal(t, "a &lt; b<br>c", textToHTML("a < b\nc"))
}
