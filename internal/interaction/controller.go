package interaction

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"corkboard/internal/domain"
	"corkboard/internal/render"
)

// Board is the mutable store the controller drives. Apply changes memory
// only; Flush and Connect make state durable.
type Board interface {
	Item(id string) (domain.Item, bool)
	Connections() []domain.Connection
	Geometry() render.GeometryProvider
	Apply(id string, fn func(*domain.Item)) bool
	Connect(ctx context.Context, from, to string, t domain.ConnectionType) (domain.Connection, error)
	Flush(ctx context.Context) error
}

// Presenter receives the imperative side of each transition.
type Presenter interface {
	Select(ids []string)
	ShowToolbar(id string)
	HideToolbar()
	RedrawItem(it domain.Item)
	RedrawConnections(id string, paths []render.Path)
	ModeChanged(m Mode)
}

type Answer int

const (
	Accepted Answer = iota
	Declined
	// Deferred means the host will answer later through CompleteLink.
	Deferred
)

// Prompter asks the user which kind of string to pin between two items.
type Prompter interface {
	ChooseConnection(from, to string) (domain.ConnectionType, Answer)
}

type Controller struct {
	board     Board
	presenter Presenter
	prompter  Prompter
	geometry  render.GeometryProvider

	machine Machine
}

type Option func(*Controller)

// WithGeometry overrides the board's own layout geometry, for hosts that
// measure rendered elements.
func WithGeometry(g render.GeometryProvider) Option {
	return func(c *Controller) { c.geometry = g }
}

// NewController drives board from pointer input. A nil prompter declines
// every link, so no string is pinned without an answer.
func NewController(board Board, presenter Presenter, prompter Prompter, opts ...Option) *Controller {
	c := &Controller{board: board, presenter: presenter, prompter: prompter}
	for _, o := range opts {
		o(c)
	}
	if c.presenter == nil {
		c.presenter = NopPresenter{}
	}
	return c
}

// State returns a copy of the current machine.
func (c *Controller) State() Machine {
	m := c.machine
	m.Selected = append([]string(nil), c.machine.Selected...)
	return m
}

func (c *Controller) Mode() Mode { return c.machine.Mode }

// Handle runs one input through Step and applies the resulting effects in order.
func (c *Controller) Handle(ctx context.Context, in Input) error {
	next, effects := Step(c.machine, in, c.view())
	if next.Phase != c.machine.Phase {
		log.Debugf("[INPUT] %s -> %s (%s)", c.machine.Phase, next.Phase, next.Active)
	}
	c.machine = next
	for _, e := range effects {
		if err := c.apply(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// CompleteLink finishes a deferred connection prompt.
func (c *Controller) CompleteLink(ctx context.Context, from, to string, t domain.ConnectionType, ok bool) error {
	if !ok {
		return nil
	}
	if !t.Valid() {
		return fmt.Errorf("complete link: unknown connection type %q", t)
	}
	if _, err := c.board.Connect(ctx, from, to, t); err != nil {
		return fmt.Errorf("complete link: %w", err)
	}
	c.presenter.RedrawConnections(from, render.PathsTouching(c.board.Connections(), c.geo(), from))
	return nil
}

func (c *Controller) apply(ctx context.Context, e Effect) error {
	switch ef := e.(type) {
	case MoveItem:
		c.mutate(ef.ID, func(it *domain.Item) { it.X, it.Y = ef.X, ef.Y })
	case RotateItem:
		c.mutate(ef.ID, func(it *domain.Item) { it.Rotation = ef.Degrees })
	case Raise:
		c.mutate(ef.ID, func(it *domain.Item) { it.ZIndex = ef.Z })
	case UpdateContent:
		c.mutate(ef.ID, func(it *domain.Item) { it.Content = ef.HTML })
	case Select:
		c.presenter.Select(ef.IDs)
	case ClearSelection:
		c.presenter.Select(nil)
	case ShowToolbar:
		c.presenter.ShowToolbar(ef.ID)
	case HideToolbar:
		c.presenter.HideToolbar()
	case ModeChanged:
		c.presenter.ModeChanged(ef.Mode)
	case RedrawConnections:
		c.presenter.RedrawConnections(ef.ID, render.PathsTouching(c.board.Connections(), c.geo(), ef.ID))
	case PromptConnection:
		return c.prompt(ctx, ef)
	case Persist:
		if err := c.board.Flush(ctx); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
	}
	return nil
}

func (c *Controller) prompt(ctx context.Context, ef PromptConnection) error {
	if c.prompter == nil {
		log.Debugf("[INPUT] no prompter, connection %s -> %s not created", ef.From, ef.To)
		return nil
	}
	t, answer := c.prompter.ChooseConnection(ef.From, ef.To)
	switch answer {
	case Accepted:
		return c.CompleteLink(ctx, ef.From, ef.To, t, true)
	case Deferred:
		log.Debugf("[INPUT] connection %s -> %s awaiting answer", ef.From, ef.To)
	}
	return nil
}

func (c *Controller) mutate(id string, fn func(*domain.Item)) {
	if !c.board.Apply(id, fn) {
		return
	}
	if it, ok := c.board.Item(id); ok {
		c.presenter.RedrawItem(it)
	}
}

func (c *Controller) geo() render.GeometryProvider {
	if c.geometry != nil {
		return c.geometry
	}
	return c.board.Geometry()
}

func (c *Controller) view() View {
	return boardView{board: c.board, geo: c.geo()}
}

type boardView struct {
	board Board
	geo   render.GeometryProvider
}

func (v boardView) Item(id string) (domain.Item, bool)    { return v.board.Item(id) }
func (v boardView) Center(id string) (domain.Point, bool) { return v.geo.Center(id) }

// NopPresenter ignores every side effect.
type NopPresenter struct{}

func (NopPresenter) Select([]string)                         {}
func (NopPresenter) ShowToolbar(string)                      {}
func (NopPresenter) HideToolbar()                            {}
func (NopPresenter) RedrawItem(domain.Item)                  {}
func (NopPresenter) RedrawConnections(string, []render.Path) {}
func (NopPresenter) ModeChanged(Mode)                        {}
