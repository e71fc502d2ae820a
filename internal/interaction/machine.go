// Package interaction turns pointer input into board operations.
//
// Step is a pure transition function over Machine; it never touches the
// board. The effects it returns are applied by Controller.
package interaction

import (
	"time"

	"corkboard/internal/domain"
	"corkboard/internal/render"
)

type Mode int

const (
	ModeMove Mode = iota
	ModeLink
)

func (m Mode) String() string {
	if m == ModeLink {
		return "link"
	}
	return "move"
}

type Phase int

const (
	Idle Phase = iota
	Dragging
	Rotating
	Linking
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Rotating:
		return "rotating"
	case Linking:
		return "linking"
	}
	return "idle"
}

// Machine is the full controller state. Only one gesture is active at a time.
type Machine struct {
	Mode     Mode
	Phase    Phase
	Active   string   // item being dragged or rotated
	Selected []string // link selection, at most one id between inputs

	Offset       domain.Point // pointer minus item top-left, while dragging
	Center       domain.Point // pivot, while rotating
	BaseAngle    float64      // radians
	BaseRotation float64      // radians
}

// ── inputs ────────────────────────────────────────────────

type Target int

const (
	TargetBackground Target = iota
	TargetBody
	TargetRotateHandle
	TargetEditableText
)

type Input interface{ input() }

type PointerDown struct {
	Target Target
	ItemID string
	Pos    domain.Point
	At     time.Time
}

type PointerMove struct{ Pos domain.Point }

type PointerUp struct{ Pos domain.Point }

type ToggleLink struct{}

// ContentInput carries the full edited markup of one item.
type ContentInput struct {
	ItemID string
	HTML   string
}

func (PointerDown) input()  {}
func (PointerMove) input()  {}
func (PointerUp) input()    {}
func (ToggleLink) input()   {}
func (ContentInput) input() {}

// ── effects ───────────────────────────────────────────────

type Effect interface{ effect() }

type MoveItem struct {
	ID   string
	X, Y float64
}

type RotateItem struct {
	ID      string
	Degrees float64
}

// Raise puts the item on top of the stack.
type Raise struct {
	ID string
	Z  int64
}

// Select replaces the visual selection.
type Select struct{ IDs []string }

type ClearSelection struct{}

type ShowToolbar struct{ ID string }

type HideToolbar struct{}

type RedrawConnections struct{ ID string }

// PromptConnection asks the user for a string style between two items.
type PromptConnection struct{ From, To string }

type UpdateContent struct {
	ID   string
	HTML string
}

type Persist struct{}

type ModeChanged struct{ Mode Mode }

func (MoveItem) effect()          {}
func (RotateItem) effect()        {}
func (Raise) effect()             {}
func (Select) effect()            {}
func (ClearSelection) effect()    {}
func (ShowToolbar) effect()       {}
func (HideToolbar) effect()       {}
func (RedrawConnections) effect() {}
func (PromptConnection) effect()  {}
func (UpdateContent) effect()     {}
func (Persist) effect()           {}
func (ModeChanged) effect()       {}

// View is the read-only board lookup Step needs.
type View interface {
	Item(id string) (domain.Item, bool)
	Center(id string) (domain.Point, bool)
}

// ── transitions ───────────────────────────────────────────

// Step computes the next machine state and the effects of in.
func Step(m Machine, in Input, v View) (Machine, []Effect) {
	switch ev := in.(type) {
	case PointerDown:
		return pointerDown(m, ev, v)
	case PointerMove:
		return pointerMove(m, ev)
	case PointerUp:
		if m.Phase == Dragging || m.Phase == Rotating {
			return release(m), []Effect{Persist{}}
		}
		return m, nil
	case ToggleLink:
		return toggleLink(m)
	case ContentInput:
		return m, []Effect{UpdateContent{ID: ev.ItemID, HTML: ev.HTML}, Persist{}}
	}
	return m, nil
}

func pointerDown(m Machine, ev PointerDown, v View) (Machine, []Effect) {
	if m.Phase == Dragging || m.Phase == Rotating {
		return m, nil
	}

	if ev.Target == TargetBackground {
		m.Selected = nil
		return m, []Effect{ClearSelection{}, HideToolbar{}}
	}

	if m.Mode == ModeLink {
		return linkClick(m, ev.ItemID)
	}

	it, ok := v.Item(ev.ItemID)
	if !ok {
		return m, nil
	}

	switch ev.Target {
	case TargetRotateHandle:
		center, ok := v.Center(it.ID)
		if !ok {
			return m, nil
		}
		m.Phase = Rotating
		m.Active = it.ID
		m.Center = center
		m.BaseAngle = render.Angle(center, ev.Pos)
		m.BaseRotation = render.Radians(it.Rotation)
		return m, nil

	case TargetBody:
		m.Phase = Dragging
		m.Active = it.ID
		m.Offset = domain.Point{X: ev.Pos.X - it.X, Y: ev.Pos.Y - it.Y}
		return m, []Effect{
			Raise{ID: it.ID, Z: ev.At.UnixMilli()},
			Select{IDs: []string{it.ID}},
			ShowToolbar{ID: it.ID},
		}

	case TargetEditableText:
		return m, []Effect{Select{IDs: []string{it.ID}}, ShowToolbar{ID: it.ID}}
	}
	return m, nil
}

func linkClick(m Machine, id string) (Machine, []Effect) {
	for _, s := range m.Selected {
		if s == id {
			return m, nil
		}
	}
	sel := make([]string, 0, len(m.Selected)+1)
	sel = append(sel, m.Selected...)
	sel = append(sel, id)
	m.Phase = Linking

	if len(sel) < 2 {
		m.Selected = sel
		return m, []Effect{Select{IDs: sel}}
	}
	m.Selected = nil
	return m, []Effect{
		Select{IDs: sel},
		PromptConnection{From: sel[0], To: sel[1]},
		ClearSelection{},
	}
}

func pointerMove(m Machine, ev PointerMove) (Machine, []Effect) {
	switch m.Phase {
	case Dragging:
		return m, []Effect{
			MoveItem{ID: m.Active, X: ev.Pos.X - m.Offset.X, Y: ev.Pos.Y - m.Offset.Y},
			RedrawConnections{ID: m.Active},
		}
	case Rotating:
		cur := render.Angle(m.Center, ev.Pos)
		return m, []Effect{
			RotateItem{ID: m.Active, Degrees: render.Degrees(cur - m.BaseAngle + m.BaseRotation)},
			RedrawConnections{ID: m.Active},
		}
	}
	return m, nil
}

func toggleLink(m Machine) (Machine, []Effect) {
	var effects []Effect
	if m.Phase == Dragging || m.Phase == Rotating {
		effects = append(effects, Persist{})
	}
	m = release(m)
	if m.Mode == ModeLink {
		m.Mode = ModeMove
		m.Phase = Idle
	} else {
		m.Mode = ModeLink
		m.Phase = Linking
	}
	m.Selected = nil
	return m, append(effects, ClearSelection{}, ModeChanged{Mode: m.Mode})
}

// release drops the captured gesture and returns to the resting phase.
func release(m Machine) Machine {
	m.Active = ""
	m.Offset = domain.Point{}
	m.Center = domain.Point{}
	m.BaseAngle, m.BaseRotation = 0, 0
	if m.Mode == ModeLink {
		m.Phase = Linking
	} else {
		m.Phase = Idle
	}
	return m
}
