package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Events forwards service notifications into the bubbletea loop. Services
// emit while holding their own locks, so Emit never blocks: when the
// buffer is full the event is dropped and the next one triggers the redraw.
type Events struct {
	ch chan string
}

func NewEvents(size int) *Events {
	return &Events{ch: make(chan string, size)}
}

func (e *Events) Emit(_ context.Context, event string, _ any) {
	select {
	case e.ch <- event:
	default:
	}
}

type serviceEventMsg struct{ name string }

// wait returns a command that delivers the next event.
func (e *Events) wait() tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		return serviceEventMsg{name: <-e.ch}
	}
}
