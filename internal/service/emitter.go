package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// Service events, delivered to whichever host is drawing
// ─────────────────────────────────────────────────────────────

const (
	EventBoardChanged  = "board:changed"
	EventBoardReloaded = "board:reloaded"
	EventBoardCleared  = "board:cleared"
	EventTasksChanged  = "tasks:changed"
	EventSnapshotSaved = "snapshot:saved"
)

// EventEmitter notifies the active host that state changed.
// The TUI turns events into redraw messages; headless hosts drop them.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter discards every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}
