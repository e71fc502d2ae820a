// Package tui is the terminal host for the board: a bubbletea program that
// draws the board as a cell grid and feeds mouse gestures to the
// interaction controller.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"corkboard/internal/domain"
	"corkboard/internal/interaction"
	"corkboard/internal/render"
	"corkboard/internal/service"
)

const panelWidth = 38

type Options struct {
	Board     *service.BoardService
	Tasks     *service.TaskService
	Events    *Events
	ExportDir string
}

type Model struct {
	ctx       context.Context
	board     *service.BoardService
	tasks     *service.TaskService
	events    *Events
	ctrl      *interaction.Controller
	exportDir string

	width, height int
	vp            viewport

	selected map[string]bool
	toolbar  string // item whose actions are offered in the status bar

	pendingLink  *linkPrompt
	confirmClear bool
	input        *editor
	help         bool

	showTasks  bool
	taskList   []domain.Task
	taskCursor int

	status    string
	statusErr bool
	quitting  bool
}

func New(ctx context.Context, opts Options) *Model {
	m := &Model{
		ctx:       ctx,
		board:     opts.Board,
		tasks:     opts.Tasks,
		events:    opts.Events,
		exportDir: opts.ExportDir,
		selected:  map[string]bool{},
		width:     80,
		height:    24,
	}
	if m.exportDir == "" {
		m.exportDir = "."
	}
	p := presenter{m: m}
	m.ctrl = interaction.NewController(opts.Board, p, p)
	return m
}

// Run starts the program on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	m.reloadTasks()
	return m.events.wait()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case serviceEventMsg:
		switch msg.name {
		case service.EventTasksChanged:
			m.reloadTasks()
		case service.EventBoardReloaded:
			m.flash("board changed on disk, reloaded")
		}
		return m, m.events.wait()

	case tea.MouseMsg:
		// A release must always reach the controller or a drag outlives
		// the button.
		if m.modal() && msg.Type != tea.MouseRelease {
			return m, nil
		}
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	if m.input != nil {
		return m, m.input.update(msg)
	}
	return m, nil
}

// ── mouse ─────────────────────────────────────────────────

// handleMouse ignores presses outside the canvas. Motion and release are
// clamped to its edge so a gesture that leaves the canvas still ends.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	canvasW, rows := m.canvasSize()
	inside := msg.X < canvasW && msg.Y < rows
	col, row := min(msg.X, canvasW-1), min(msg.Y, rows-1)
	pos := m.vp.toBoard(col, row)

	var in interaction.Input
	switch msg.Type {
	case tea.MouseLeft:
		if !inside {
			return
		}
		target, id := hitTest(m.board.Scene(nil), m.vp, col, row)
		in = interaction.PointerDown{Target: target, ItemID: id, Pos: pos, At: time.Now()}
	case tea.MouseMotion:
		in = interaction.PointerMove{Pos: pos}
	case tea.MouseRelease:
		in = interaction.PointerUp{Pos: pos}
	default:
		return
	}
	if err := m.ctrl.Handle(m.ctx, in); err != nil {
		m.fail(err)
	}
}

// ── keys ──────────────────────────────────────────────────

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	m.status, m.statusErr = "", false
	switch {
	case m.input != nil:
		return m, m.handleInputKey(msg)
	case m.pendingLink != nil:
		m.handleLinkKey(msg)
		return m, nil
	case m.confirmClear:
		m.handleConfirmKey(msg)
		return m, nil
	case m.help:
		m.help = false
		return m, nil
	}

	key := msg.String()
	if m.showTasks && m.handleTaskKey(key) {
		return m, m.inputBlink()
	}

	switch key {
	case "q":
		return m.quit()
	case "?":
		m.help = true
	case "n":
		m.addNote()
	case "i":
		m.input = newLineEditor(inputPhoto, "photo path or URL: ")
	case "p":
		m.paste()
	case "l":
		m.handle(interaction.ToggleLink{})
	case "esc":
		m.handle(interaction.PointerDown{Target: interaction.TargetBackground})
	case "e", "enter":
		if it, ok := m.toolbarItem(); ok {
			m.input = newNoteEditor(it.ID, render.PlainText(it.Content))
		}
	case "d", "delete", "backspace":
		m.deleteSelected()
	case "f":
		if it, ok := m.toolbarItem(); ok {
			if _, err := m.board.BringToFront(m.ctx, it.ID); err != nil {
				m.fail(err)
			}
		}
	case "C":
		if len(m.board.State().Items) > 0 {
			m.confirmClear = true
		}
	case "x":
		m.exportPNG()
	case "X":
		m.exportSVG()
	case "t":
		m.showTasks = !m.showTasks
		m.reloadTasks()
	case "left":
		m.vp.panX -= 4
	case "right":
		m.vp.panX += 4
	case "up":
		m.vp.panY -= 2
	case "down":
		m.vp.panY += 2
	case "0":
		m.vp = viewport{}
	}
	return m, m.inputBlink()
}

// inputBlink starts the cursor of an editor a key has just opened.
func (m *Model) inputBlink() tea.Cmd {
	if m.input == nil {
		return nil
	}
	if m.input.multiline() {
		return textarea.Blink
	}
	return textinput.Blink
}

func (m *Model) handleLinkKey(msg tea.KeyMsg) {
	link := m.pendingLink
	m.pendingLink = nil
	var (
		t  domain.ConnectionType
		ok = true
	)
	switch msg.String() {
	case "s":
		t = domain.ConnectionStraight
	case "c":
		t = domain.ConnectionCurved
	default:
		ok = false
	}
	if err := m.ctrl.CompleteLink(m.ctx, link.from, link.to, t, ok); err != nil {
		m.fail(err)
		return
	}
	if ok {
		m.flash(string(t) + " string pinned")
	}
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) {
	m.confirmClear = false
	if msg.String() != "y" {
		m.flash("clear cancelled")
		return
	}
	if err := m.board.Clear(m.ctx, service.Confirmed); err != nil {
		m.fail(err)
		return
	}
	m.selected = map[string]bool{}
	m.toolbar = ""
	m.flash("board cleared")
}

// ── actions ───────────────────────────────────────────────

func (m *Model) handle(in interaction.Input) {
	if err := m.ctrl.Handle(m.ctx, in); err != nil {
		m.fail(err)
	}
}

func (m *Model) addNote() {
	canvasW, rows := m.canvasSize()
	pos := m.vp.toBoard(canvasW/2-12, rows/2-2)
	it, err := m.board.AddNote(m.ctx, pos, "")
	if err != nil {
		m.fail(err)
		return
	}
	log.Debugf("[TUI] note %s pinned at (%.0f, %.0f)", it.ID, it.X, it.Y)
}

func (m *Model) deleteSelected() {
	it, ok := m.toolbarItem()
	if !ok {
		return
	}
	if _, err := m.board.RemoveItem(m.ctx, it.ID); err != nil {
		m.fail(err)
		return
	}
	delete(m.selected, it.ID)
	m.toolbar = ""
}

func (m *Model) toolbarItem() (domain.Item, bool) {
	if m.toolbar == "" {
		return domain.Item{}, false
	}
	return m.board.Item(m.toolbar)
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) modal() bool {
	return m.input != nil || m.pendingLink != nil || m.confirmClear || m.help
}

func (m *Model) canvasSize() (int, int) {
	w := m.width
	if m.showTasks {
		w -= panelWidth
	}
	rows := m.height - 1
	if w < 1 {
		w = 1
	}
	if rows < 1 {
		rows = 1
	}
	return w, rows
}

func (m *Model) flash(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) fail(err error) {
	log.Errorf("[TUI] %v", err)
	m.status = err.Error()
	m.statusErr = true
}
