package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"corkboard/internal/domain"
)

const backupJob = "board-backup"

// SnapshotService saves and restores copies of the board, on demand or on
// a cron schedule.
type SnapshotService struct {
	board   *BoardService
	store   domain.SnapshotStore
	emitter EventEmitter
	guard   jobGuard

	mu       sync.Mutex
	cron     *cron.Cron
	lastHash [32]byte
}

func NewSnapshotService(board *BoardService, store domain.SnapshotStore, emitter EventEmitter) *SnapshotService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &SnapshotService{board: board, store: store, emitter: emitter}
}

// Save pushes the current board under label.
func (s *SnapshotService) Save(ctx context.Context, label string) (domain.Snapshot, error) {
	state := s.board.State()
	snap, err := s.store.Push(ctx, label, state)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	s.mu.Lock()
	s.lastHash = hashState(state)
	s.mu.Unlock()
	s.emitter.Emit(ctx, EventSnapshotSaved, snap)
	return snap, nil
}

func (s *SnapshotService) List(ctx context.Context) ([]domain.Snapshot, error) {
	return s.store.List(ctx)
}

// Restore replaces the board with a saved copy once confirmer agrees.
// The current board is snapshotted first so a restore can be undone.
func (s *SnapshotService) Restore(ctx context.Context, id string, confirmer Confirmer) error {
	state, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	detail := fmt.Sprintf("replace the board with snapshot %s (%d items)", id, len(state.Items))
	if confirmer == nil || !confirmer.Confirm(ctx, "restore snapshot", detail) {
		return fmt.Errorf("restore snapshot: %w", domain.ErrNotConfirmed)
	}
	if _, err := s.Save(ctx, "before restore "+id); err != nil {
		return err
	}
	if err := s.board.Replace(ctx, state); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	log.Infof("[BACKUP] restored snapshot %s", id)
	return nil
}

// RunScheduled saves a snapshot only when the board changed since the last
// one. It reports whether a snapshot was written.
func (s *SnapshotService) RunScheduled(ctx context.Context) (bool, error) {
	if !s.guard.Begin(backupJob) {
		log.Debugf("[BACKUP] previous run still in progress, skipping")
		return false, nil
	}
	defer s.guard.End(backupJob)

	h := hashState(s.board.State())
	s.mu.Lock()
	unchanged := h == s.lastHash
	s.mu.Unlock()
	if unchanged {
		return false, nil
	}
	if _, err := s.Save(ctx, "scheduled"); err != nil {
		return false, err
	}
	return true, nil
}

// Start schedules RunScheduled with a standard cron expression or
// descriptor such as "@every 30m".
func (s *SnapshotService) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("backup scheduler already running")
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		wrote, err := s.RunScheduled(ctx)
		if err != nil {
			log.Errorf("[BACKUP] scheduled snapshot failed: %v", err)
			return
		}
		if wrote {
			log.Infof("[BACKUP] scheduled snapshot saved")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	log.Infof("[BACKUP] scheduled snapshots %s", schedule)
	return nil
}

// Stop halts the scheduler and waits for an in-flight snapshot.
func (s *SnapshotService) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	s.guard.Wait(ctx)
}

func hashState(state domain.BoardState) [32]byte {
	data, _ := json.Marshal(state)
	return sha256.Sum256(data)
}
