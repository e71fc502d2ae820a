// Package app wires configuration, storage and services together and hosts
// them as the terminal UI, the MCP server or the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"corkboard/internal/board"
	"corkboard/internal/config"
	"corkboard/internal/logging"
	"corkboard/internal/metrics"
	"corkboard/internal/service"
	"corkboard/internal/storage"
)

// App owns the storage connection and every service built on it.
type App struct {
	cfg *config.Config

	kv      storage.KV
	logs    io.Closer
	metrics *metrics.Collector

	Board     *service.BoardService
	Tasks     *service.TaskService
	Snapshots *service.SnapshotService

	watcher *service.BoardWatcher
}

// Open connects storage, loads the board and starts the background jobs
// the configuration asks for. emitter receives service events; nil drops
// them.
func Open(ctx context.Context, cfg *config.Config, emitter service.EventEmitter) (*App, error) {
	logs, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	if emitter == nil {
		emitter = service.NopEmitter{}
	}

	kv, err := storage.Open(ctx, storage.Options{
		Driver:    cfg.Storage.Driver,
		DSN:       cfg.Storage.DSN,
		Namespace: cfg.Storage.Namespace,
		Database:  cfg.Storage.Database,
	})
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	log.Infof("[STORAGE] %s backend ready", cfg.Storage.Driver)

	a := &App{cfg: cfg, kv: kv, logs: logs, metrics: metrics.New("corkboard")}

	boardRepo := storage.NewBoardRepository(kv, cfg.Storage.BoardKey)
	store := board.New(board.Options{
		Jitter:     cfg.Board.Jitter,
		NoteWidth:  cfg.Board.NoteWidth,
		PhotoWidth: cfg.Board.PhotoWidth,
	})
	a.Board = service.NewBoardService(store, boardRepo, emitter, a.metrics)
	a.Tasks = service.NewTaskService(storage.NewTaskRepository(kv, cfg.Storage.TasksKey), emitter)
	a.Snapshots = service.NewSnapshotService(a.Board, storage.NewSnapshotStore(kv, cfg.Backup.Keep), emitter)

	if err := a.Board.Load(ctx); err != nil {
		a.closeStorage()
		return nil, err
	}

	if cfg.Storage.Watch {
		if fkv, ok := kv.(*storage.FileKV); ok {
			a.watcher = service.NewBoardWatcher(a.Board, boardRepo, fkv.Path(cfg.Storage.BoardKey))
			if err := a.watcher.Start(ctx); err != nil {
				log.Warnf("[WATCH] disabled: %v", err)
				a.watcher = nil
			}
		}
	}
	return a, nil
}

// StartBackups schedules periodic snapshots when enabled.
func (a *App) StartBackups(ctx context.Context) error {
	if !a.cfg.Backup.Enabled {
		return nil
	}
	return a.Snapshots.Start(ctx, a.cfg.Backup.Schedule)
}

// Metrics returns the collector shared by the services.
func (a *App) Metrics() *metrics.Collector { return a.metrics }

// Close stops background work, writes the board one last time and releases
// storage.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("stop watcher: %w", err))
		}
	}
	a.Snapshots.Stop(ctx)
	if err := a.Board.Teardown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.closeStorage(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeStorage() error {
	err := a.kv.Close()
	a.logs.Close()
	if err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
