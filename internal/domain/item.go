package domain

type ItemType string

const (
	ItemTypeNote  ItemType = "note"
	ItemTypePhoto ItemType = "photo"
)

// Valid reports whether t is one of the known item variants.
func (t ItemType) Valid() bool {
	return t == ItemTypeNote || t == ItemTypePhoto
}

// Item is a note or photo pinned to the board.
// Height is never stored; it follows from the content when laid out.
type Item struct {
	ID       string   `json:"id"`
	Type     ItemType `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation float64  `json:"rotation"` // degrees, unbounded
	Width    float64  `json:"width"`
	ZIndex   int64    `json:"zIndex"`
	Content  string   `json:"content"`         // HTML (note text or photo caption)
	Image    string   `json:"image,omitempty"` // data URI or remote URL, photos only
}

// Point is a position in board coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
