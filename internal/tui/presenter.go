package tui

import (
	"corkboard/internal/domain"
	"corkboard/internal/interaction"
	"corkboard/internal/render"
)

// presenter applies controller side effects to the model. The whole scene
// is redrawn every frame, so redraw requests need no bookkeeping.
type presenter struct{ m *Model }

func (p presenter) Select(ids []string) {
	p.m.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		p.m.selected[id] = true
	}
}

func (p presenter) ShowToolbar(id string) { p.m.toolbar = id }

func (p presenter) HideToolbar() { p.m.toolbar = "" }

func (p presenter) RedrawItem(domain.Item) {}

func (p presenter) RedrawConnections(string, []render.Path) {}

func (p presenter) ModeChanged(mode interaction.Mode) {
	if mode == interaction.ModeLink {
		p.m.flash("link mode: click two items to pin a string")
		return
	}
	p.m.flash("move mode")
}

// ChooseConnection opens the string-type dialog and answers later through
// Controller.CompleteLink.
func (p presenter) ChooseConnection(from, to string) (domain.ConnectionType, interaction.Answer) {
	p.m.pendingLink = &linkPrompt{from: from, to: to}
	return "", interaction.Deferred
}

type linkPrompt struct{ from, to string }
