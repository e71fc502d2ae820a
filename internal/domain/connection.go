package domain

type ConnectionType string

const (
	ConnectionStraight ConnectionType = "straight"
	ConnectionCurved   ConnectionType = "curved"
)

func (t ConnectionType) Valid() bool {
	return t == ConnectionStraight || t == ConnectionCurved
}

// Connection is a string pinned between two items. It is stored directed
// but carries no ordering meaning; duplicates and self-loops are allowed.
type Connection struct {
	ID   string         `json:"id,omitempty"`
	From string         `json:"from"`
	To   string         `json:"to"`
	Type ConnectionType `json:"type"`
}

// Touches reports whether the connection references the item id at either end.
func (c Connection) Touches(id string) bool {
	return c.From == id || c.To == id
}
