package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/metrics"
	"corkboard/internal/render"
)

// BoardService owns the board for the life of the process. Every exported
// operation holds the lock across both the mutation and its flush, so
// concurrent hosts (TUI, MCP, HTTP, watcher, cron) see atomic changes.
type BoardService struct {
	mu      sync.Mutex
	store   *board.Store
	repo    domain.BoardRepository
	emitter EventEmitter
	metrics *metrics.Collector
	height  render.HeightFunc
	loaded  bool

	// persisted is the hash of the board as last read from or written to
	// the repository. Apply changes are not part of it until Flush.
	persisted [32]byte
}

func NewBoardService(store *board.Store, repo domain.BoardRepository, emitter EventEmitter, m *metrics.Collector) *BoardService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &BoardService{store: store, repo: repo, emitter: emitter, metrics: m, height: render.EstimateHeight}
}

// ─────────────────────────────────────────────────────────────
// Lifecycle
// ─────────────────────────────────────────────────────────────

// Load hydrates the store from the repository. A missing board is empty;
// a malformed one is returned as an error and the store is left untouched.
func (s *BoardService) Load(ctx context.Context) error {
	state, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Load(state)
	s.loaded = true
	s.persisted = hashState(state)
	log.Infof("[BOARD] loaded %d item(s), %d connection(s)", len(state.Items), len(state.Connections))
	return nil
}

// Teardown flushes one last time and releases the in-memory state.
func (s *BoardService) Teardown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	err := s.flushLocked(ctx)
	s.store.Teardown()
	s.loaded = false
	return err
}

// Replace swaps the whole board, e.g. when restoring a snapshot.
func (s *BoardService) Replace(ctx context.Context, state domain.BoardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Load(state)
	return s.flushLocked(ctx)
}

// Reload adopts state written by another process without writing it back.
func (s *BoardService) Reload(ctx context.Context, state domain.BoardState) {
	s.mu.Lock()
	s.store.Load(state)
	s.persisted = hashState(state)
	s.mu.Unlock()
	s.emitter.Emit(ctx, EventBoardReloaded, summary(state))
}

// ─────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────

func (s *BoardService) State() domain.BoardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// IsPersisted reports whether state is what the repository last held as
// far as this service knows, i.e. whether a write to disk was our own.
func (s *BoardService) IsPersisted(state domain.BoardState) bool {
	h := hashState(state)
	s.mu.Lock()
	defer s.mu.Unlock()
	return h == s.persisted
}

func (s *BoardService) Item(id string) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Item(id)
}

func (s *BoardService) Connections() []domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Connections()
}

// Geometry returns a layout-based provider over the current items.
func (s *BoardService) Geometry() render.GeometryProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.NewLayoutGeometry(s.store.Items(), s.height)
}

// Scene projects the current board for drawing.
func (s *BoardService) Scene(selected map[string]bool) render.Scene {
	return render.Project(s.State(), nil, selected)
}

// Paths resolves every drawable connection.
func (s *BoardService) Paths() []render.Path {
	state := s.State()
	return render.ConnectionPaths(state.Connections, render.NewLayoutGeometry(state.Items, s.height))
}

// ─────────────────────────────────────────────────────────────
// Mutations (each one flushes)
// ─────────────────────────────────────────────────────────────

func (s *BoardService) AddNote(ctx context.Context, pos domain.Point, html string) (domain.Item, error) {
	if html == "" {
		html = "New note..."
	}
	return s.add(ctx, domain.ItemTypeNote, pos, func(it *domain.Item) { it.Content = html })
}

// AddPhoto pins an image. image is a data URI or a remote URL.
func (s *BoardService) AddPhoto(ctx context.Context, pos domain.Point, image, caption string) (domain.Item, error) {
	if image == "" {
		return domain.Item{}, fmt.Errorf("add photo: %w: image is required", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(image, "data:") && !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") {
		return domain.Item{}, fmt.Errorf("add photo: %w: image must be a data URI or http(s) URL", domain.ErrInvalidInput)
	}
	return s.add(ctx, domain.ItemTypePhoto, pos, func(it *domain.Item) {
		it.Image = image
		it.Content = caption
	})
}

func (s *BoardService) add(ctx context.Context, t domain.ItemType, pos domain.Point, fill func(*domain.Item)) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.store.AddItem(t, pos)
	s.store.UpdateItem(it.ID, fill)
	it, _ = s.store.Item(it.ID)
	s.metrics.ItemCreated(string(t))
	return it, s.flushLocked(ctx)
}

// RemoveItem deletes an item and its connections. Unknown ids are a no-op.
func (s *BoardService) RemoveItem(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.RemoveItem(id) {
		return false, nil
	}
	s.metrics.ItemDeleted()
	return true, s.flushLocked(ctx)
}

// UpdateItem applies fn and flushes. It reports domain.ErrItemNotFound for
// unknown ids so explicit callers can surface it.
func (s *BoardService) UpdateItem(ctx context.Context, id string, fn func(*domain.Item)) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.UpdateItem(id, fn) {
		return domain.Item{}, fmt.Errorf("update %s: %w", id, domain.ErrItemNotFound)
	}
	it, _ := s.store.Item(id)
	return it, s.flushLocked(ctx)
}

func (s *BoardService) MoveItem(ctx context.Context, id string, x, y float64) (domain.Item, error) {
	return s.UpdateItem(ctx, id, func(it *domain.Item) { it.X, it.Y = x, y })
}

func (s *BoardService) RotateItem(ctx context.Context, id string, degrees float64) (domain.Item, error) {
	return s.UpdateItem(ctx, id, func(it *domain.Item) { it.Rotation = degrees })
}

func (s *BoardService) UpdateContent(ctx context.Context, id, html string) (domain.Item, error) {
	return s.UpdateItem(ctx, id, func(it *domain.Item) { it.Content = html })
}

// BringToFront restacks the item above everything touched so far.
func (s *BoardService) BringToFront(ctx context.Context, id string) (domain.Item, error) {
	z := time.Now().UnixMilli()
	return s.UpdateItem(ctx, id, func(it *domain.Item) {
		if it.ZIndex < z {
			it.ZIndex = z
		} else {
			it.ZIndex++
		}
	})
}

// Connect pins a string between two items. Neither end is validated.
func (s *BoardService) Connect(ctx context.Context, from, to string, t domain.ConnectionType) (domain.Connection, error) {
	if !t.Valid() {
		return domain.Connection{}, fmt.Errorf("connect: %w: unknown connection type %q", domain.ErrInvalidInput, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.store.AddConnection(from, to, t)
	s.metrics.ConnectionCreated(string(t))
	return c, s.flushLocked(ctx)
}

// Clear empties the board once confirmer agrees.
func (s *BoardService) Clear(ctx context.Context, confirmer Confirmer) error {
	state := s.State()
	detail := fmt.Sprintf("remove %d item(s) and %d connection(s)", len(state.Items), len(state.Connections))
	if confirmer == nil || !confirmer.Confirm(ctx, "clear board", detail) {
		return fmt.Errorf("clear board: %w", domain.ErrNotConfirmed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Clear()
	s.metrics.BoardCleared()
	if err := s.flushLocked(ctx); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventBoardCleared, nil)
	return nil
}

// ─────────────────────────────────────────────────────────────
// interaction.Board
// ─────────────────────────────────────────────────────────────

// Apply mutates an item in memory only. Pointer gestures call it on every
// move and Flush once on release.
func (s *BoardService) Apply(id string, fn func(*domain.Item)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.UpdateItem(id, fn)
}

func (s *BoardService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

// ── helpers ───────────────────────────────────────────────

func (s *BoardService) flushLocked(ctx context.Context) error {
	start := time.Now()
	state := s.store.Snapshot()
	err := s.repo.Save(ctx, state)
	s.metrics.ObserveFlush(start, err)
	if err != nil {
		log.Errorf("[BOARD] flush failed: %v", err)
		return fmt.Errorf("flush board: %w", err)
	}
	s.persisted = hashState(state)
	s.emitter.Emit(ctx, EventBoardChanged, summary(state))
	return nil
}

func summary(state domain.BoardState) map[string]int {
	return map[string]int{"items": len(state.Items), "connections": len(state.Connections)}
}
