package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"corkboard/internal/domain"
)

const watchDebounce = 500 * time.Millisecond

// BoardWatcher reloads the board when its backing file is edited by
// another process (a second corkboard, an editor, a sync tool). Our own
// flushes come back as events too; they decode to the state last written
// and are ignored, even while a gesture holds unflushed changes.
type BoardWatcher struct {
	board    *BoardService
	repo     domain.BoardRepository
	path     string
	debounce time.Duration

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

func NewBoardWatcher(board *BoardService, repo domain.BoardRepository, path string) *BoardWatcher {
	return &BoardWatcher{board: board, repo: repo, path: path, debounce: watchDebounce}
}

// SetDebounce overrides the quiet period before a reload.
func (w *BoardWatcher) SetDebounce(d time.Duration) { w.debounce = d }

// Start watches the directory holding the board file.
func (w *BoardWatcher) Start(ctx context.Context) error {
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	w.path = absPath

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: atomic writes replace the file, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	w.watcher = watcher

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.watchLoop(ctx)

	log.Infof("[WATCH] watching %s", absPath)
	return nil
}

// Close stops the watcher and any pending reload.
func (w *BoardWatcher) Close() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.cancel = nil
	return err
}

func (w *BoardWatcher) watchLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if absPath, _ := filepath.Abs(event.Name); absPath != w.path {
				continue
			}
			w.schedule(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("[WATCH] watcher error: %v", err)
		}
	}
}

func (w *BoardWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.reload(ctx) })
}

func (w *BoardWatcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	state, err := w.repo.Load(ctx)
	if err != nil {
		log.Warnf("[WATCH] ignoring unreadable board file: %v", err)
		return
	}
	if w.board.IsPersisted(state) {
		return
	}
	log.Infof("[WATCH] board file changed on disk, reloading (%d items)", len(state.Items))
	w.board.Reload(ctx, state)
}
