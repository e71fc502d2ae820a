package domain

// BoardState is the persisted layout of the board: one JSON object holding
// both collections, in insertion order.
type BoardState struct {
	Items       []Item       `json:"items"`
	Connections []Connection `json:"connections"`
}

// Clone returns a deep copy so callers can hand state across goroutines.
func (s BoardState) Clone() BoardState {
	out := BoardState{
		Items:       make([]Item, len(s.Items)),
		Connections: make([]Connection, len(s.Connections)),
	}
	copy(out.Items, s.Items)
	copy(out.Connections, s.Connections)
	return out
}

// FindItem returns the item with the given id.
func (s BoardState) FindItem(id string) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
