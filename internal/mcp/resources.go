package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	boardURI = "corkboard://board"
	tasksURI = "corkboard://tasks"
)

func (s *Server) registerResources() {
	// ── corkboard://board ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		boardURI,
		"Corkboard",
		mcp.WithResourceDescription("Every item and connection, as persisted"),
		mcp.WithMIMEType("application/json"),
	), s.handleBoardResource)

	// ── corkboard://tasks ──────────────────────────────
	if s.tasks != nil {
		s.mcp.AddResource(mcp.NewResource(
			tasksURI,
			"Case To-Do List",
			mcp.WithMIMEType("application/json"),
		), s.handleTasksResource)
	}
}

func (s *Server) handleBoardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.board.State(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      boardURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleTasksResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      tasksURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
