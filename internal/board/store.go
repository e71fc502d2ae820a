// Package board holds the in-memory item store: the ordered list of notes and
// photos pinned to the board and the strings connecting them.
//
// A Store is owned by a single goroutine. Hosts that share one across
// goroutines go through service.BoardService, which serializes access.
package board

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"corkboard/internal/domain"
)

const (
	DefaultJitter     = 15.0
	DefaultNoteWidth  = 200.0
	DefaultPhotoWidth = 240.0
	noteTilt          = 3.0
	photoTilt         = 5.0
)

// Options tunes item placement. Zero values fall back to the defaults.
type Options struct {
	Jitter     float64
	NoteWidth  float64
	PhotoWidth float64
	Rand       *rand.Rand
	Now        func() time.Time
}

type Store struct {
	items       []domain.Item
	connections []domain.Connection

	opts   Options
	lastID int64
	closed bool
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.Jitter == 0 {
		opts.Jitter = DefaultJitter
	}
	if opts.NoteWidth == 0 {
		opts.NoteWidth = DefaultNoteWidth
	}
	if opts.PhotoWidth == 0 {
		opts.PhotoWidth = DefaultPhotoWidth
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{opts: opts}
}

// Load replaces the store contents with a persisted state.
func (s *Store) Load(state domain.BoardState) {
	st := state.Clone()
	s.items = st.Items
	s.connections = st.Connections
	s.closed = false
	for _, it := range s.items {
		if n, err := strconv.ParseInt(it.ID, 10, 64); err == nil && n > s.lastID {
			s.lastID = n
		}
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.BoardState {
	return domain.BoardState{Items: s.items, Connections: s.connections}.Clone()
}

// Teardown drops both collections. The store can be reused after Load.
func (s *Store) Teardown() {
	s.items = nil
	s.connections = nil
	s.closed = true
}

func (s *Store) Closed() bool { return s.closed }

// AddItem pins a new item near pos with a little random offset and tilt.
func (s *Store) AddItem(t domain.ItemType, pos domain.Point) domain.Item {
	now := s.opts.Now()
	tilt, width := noteTilt, s.opts.NoteWidth
	if t == domain.ItemTypePhoto {
		tilt, width = photoTilt, s.opts.PhotoWidth
	}
	it := domain.Item{
		ID:       s.nextID(now),
		Type:     t,
		X:        pos.X + s.spread(s.opts.Jitter),
		Y:        pos.Y + s.spread(s.opts.Jitter),
		Rotation: s.spread(tilt),
		Width:    width,
		ZIndex:   now.UnixMilli(),
	}
	s.items = append(s.items, it)
	return it
}

// RemoveItem deletes the item and every connection touching it.
// It reports whether anything changed.
func (s *Store) RemoveItem(id string) bool {
	idx := s.index(id)
	if idx < 0 {
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	kept := s.connections[:0]
	for _, c := range s.connections {
		if !c.Touches(id) {
			kept = append(kept, c)
		}
	}
	s.connections = kept
	return true
}

// UpdateItem applies fn to the stored item. The id cannot be changed.
func (s *Store) UpdateItem(id string, fn func(*domain.Item)) bool {
	idx := s.index(id)
	if idx < 0 {
		return false
	}
	fn(&s.items[idx])
	s.items[idx].ID = id
	return true
}

// AddConnection appends a connection without checking that either end exists.
func (s *Store) AddConnection(from, to string, t domain.ConnectionType) domain.Connection {
	c := domain.Connection{ID: uuid.NewString(), From: from, To: to, Type: t}
	s.connections = append(s.connections, c)
	return c
}

func (s *Store) Clear() {
	s.items = nil
	s.connections = nil
}

func (s *Store) Item(id string) (domain.Item, bool) {
	idx := s.index(id)
	if idx < 0 {
		return domain.Item{}, false
	}
	return s.items[idx], true
}

// Items returns a copy of the items in insertion order.
func (s *Store) Items() []domain.Item {
	out := make([]domain.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Connections returns a copy of the connections in insertion order.
func (s *Store) Connections() []domain.Connection {
	out := make([]domain.Connection, len(s.connections))
	copy(out, s.connections)
	return out
}

// ── helpers ───────────────────────────────────────────────

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID derives the id from the wall clock in milliseconds, bumping past
// the previous one when two items land in the same millisecond.
func (s *Store) nextID(now time.Time) string {
	n := now.UnixMilli()
	if n <= s.lastID {
		n = s.lastID + 1
	}
	s.lastID = n
	return strconv.FormatInt(n, 10)
}

// spread returns a uniform value in [-limit, limit].
func (s *Store) spread(limit float64) float64 {
	return (s.opts.Rand.Float64()*2 - 1) * limit
}
