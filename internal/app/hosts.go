package app

import (
	"context"
	"fmt"
	"path/filepath"

	"corkboard/internal/config"
	"corkboard/internal/httpapi"
	mcpserver "corkboard/internal/mcp"
	"corkboard/internal/tui"
)

// RunTUI opens the board in the terminal. Logs go to a file so they do not
// tear the alternate screen.
func RunTUI(ctx context.Context, cfg *config.Config) error {
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "corkboard.log")
	}
	events := tui.NewEvents(64)
	a, err := Open(ctx, cfg, events)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.StartBackups(ctx); err != nil {
		return err
	}
	return tui.Run(ctx, tui.Options{
		Board:     a.Board,
		Tasks:     a.Tasks,
		Events:    events,
		ExportDir: cfg.DataDir,
	})
}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout.
// It shares storage with any open terminal board; the file driver with
// watch enabled lets the terminal pick up the agent's changes.
func ServeMCP(ctx context.Context, cfg *config.Config) error {
	a, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	srv := mcpserver.New(mcpserver.Deps{
		Board:     a.Board,
		Tasks:     a.Tasks,
		Snapshots: a.Snapshots,
	})

	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// ServeHTTP serves the JSON API until ctx is cancelled.
func ServeHTTP(ctx context.Context, cfg *config.Config) error {
	a, err := Open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.StartBackups(ctx); err != nil {
		return err
	}
	srv := httpapi.New(httpapi.Deps{
		Board:          a.Board,
		Tasks:          a.Tasks,
		Snapshots:      a.Snapshots,
		Metrics:        a.Metrics(),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})
	return httpapi.Serve(ctx, cfg.HTTP.Addr, srv.Routes())
}
