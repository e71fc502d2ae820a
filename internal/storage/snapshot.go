package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"corkboard/internal/domain"
)

const (
	snapshotIndexKey = "corkboard_snapshots"
	snapshotKeyFmt   = "corkboard_snapshot_%s"

	// DefaultSnapshotLimit is how many snapshots are kept before the oldest are pruned.
	DefaultSnapshotLimit = 40
)

// SnapshotStore keeps a bounded, newest-first history of board copies.
// The index lives under one key and each body under its own key, so any
// KV backend can hold it.
type SnapshotStore struct {
	kv    KV
	limit int
	now   func() time.Time
	mu    sync.Mutex
}

func NewSnapshotStore(kv KV, limit int) *SnapshotStore {
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	return &SnapshotStore{kv: kv, limit: limit, now: time.Now}
}

// Push saves a copy of state and prunes the history past the limit.
func (s *SnapshotStore) Push(ctx context.Context, label string, state domain.BoardState) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := EncodeBoard(state)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap := domain.Snapshot{
		ID:        uuid.NewString(),
		Label:     label,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Items:     len(state.Items),
		Links:     len(state.Connections),
	}
	if err := s.kv.Set(ctx, fmt.Sprintf(snapshotKeyFmt, snap.ID), data); err != nil {
		return domain.Snapshot{}, fmt.Errorf("push snapshot: %w", err)
	}

	index, err := s.index(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	index = append([]domain.Snapshot{snap}, index...)
	if err := s.pruneIfNeeded(ctx, &index); err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.writeIndex(ctx, index); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// List returns snapshot metadata, newest first.
func (s *SnapshotStore) List(ctx context.Context) ([]domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(ctx)
}

// Get returns the board saved under id.
func (s *SnapshotStore) Get(ctx context.Context, id string) (domain.BoardState, error) {
	data, err := s.kv.Get(ctx, fmt.Sprintf(snapshotKeyFmt, id))
	if errors.Is(err, ErrNotFound) {
		return domain.BoardState{}, fmt.Errorf("get snapshot %s: %w", id, domain.ErrSnapshotNotFound)
	}
	if err != nil {
		return domain.BoardState{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return DecodeBoard(data)
}

func (s *SnapshotStore) index(ctx context.Context) ([]domain.Snapshot, error) {
	data, err := s.kv.Get(ctx, snapshotIndexKey)
	if errors.Is(err, ErrNotFound) {
		return []domain.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot index: %w", err)
	}
	var index []domain.Snapshot
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("%w: snapshot index: %v", domain.ErrMalformedState, err)
	}
	return index, nil
}

func (s *SnapshotStore) writeIndex(ctx context.Context, index []domain.Snapshot) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode snapshot index: %w", err)
	}
	if err := s.kv.Set(ctx, snapshotIndexKey, data); err != nil {
		return fmt.Errorf("write snapshot index: %w", err)
	}
	return nil
}

// pruneIfNeeded drops the oldest snapshots past the limit.
func (s *SnapshotStore) pruneIfNeeded(ctx context.Context, index *[]domain.Snapshot) error {
	if len(*index) <= s.limit {
		return nil
	}
	for _, old := range (*index)[s.limit:] {
		if err := s.kv.Delete(ctx, fmt.Sprintf(snapshotKeyFmt, old.ID)); err != nil {
			return fmt.Errorf("prune snapshot %s: %w", old.ID, err)
		}
	}
	*index = (*index)[:s.limit]
	return nil
}
