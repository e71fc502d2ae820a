package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"corkboard/internal/domain"
	"corkboard/internal/service"
)

func (s *Server) registerSnapshotTools() {
	s.mcp.AddTool(mcp.NewTool("list_snapshots",
		mcp.WithDescription("List saved copies of the board, newest first"),
	), s.handleListSnapshots)

	s.mcp.AddTool(mcp.NewTool("save_snapshot",
		mcp.WithDescription("Save a copy of the board as it is now"),
		mcp.WithString("label", mcp.Description("Short label (optional)")),
	), s.handleSaveSnapshot)

	s.mcp.AddTool(mcp.NewTool("restore_snapshot",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace the board with a saved copy. The current board is saved first. Only runs with confirm=true."),
		mcp.WithString("snapshotId", mcp.Description("Snapshot ID"), mcp.Required()),
		mcp.WithBoolean("confirm", mcp.Description("Must be true, after the user agreed"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRestoreSnapshot)
}

func (s *Server) handleListSnapshots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.snapshots.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return textResult("No snapshots yet"), nil
	}
	return jsonResult(list)
}

func (s *Server) handleSaveSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.snapshots.Save(ctx, getString(req.GetArguments(), "label", "agent"))
	if err != nil {
		return nil, err
	}
	return jsonResult(snap)
}

func (s *Server) handleRestoreSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "snapshotId")
	if err != nil {
		return nil, err
	}
	confirm := getBool(args, "confirm")
	err = s.snapshots.Restore(ctx, id, service.ConfirmFunc(func(context.Context, string, string) bool { return confirm }))
	if errors.Is(err, domain.ErrNotConfirmed) {
		return textResult("Snapshot not restored: confirm=true is required after the user agrees"), nil
	}
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Board restored from snapshot %s", id)), nil
}
