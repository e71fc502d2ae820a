package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"corkboard/internal/service"
)

// Server is the MCP server for the corkboard.
// It exposes tools, resources, and prompts so AI agents can pin notes,
// photos and strings alongside the person at the board.
type Server struct {
	mcp    *server.MCPServer
	layout *LayoutEngine

	board     *service.BoardService
	tasks     *service.TaskService
	snapshots *service.SnapshotService
}

// Deps holds the services the MCP server drives.
type Deps struct {
	Board     *service.BoardService
	Tasks     *service.TaskService
	Snapshots *service.SnapshotService
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		layout:    NewLayoutEngine(),
		board:     deps.Board,
		tasks:     deps.Tasks,
		snapshots: deps.Snapshots,
	}

	s.mcp = server.NewMCPServer(
		"corkboard-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBoardTools()
	s.registerConnectionTools()
	if s.tasks != nil {
		s.registerTaskTools()
	}
	if s.snapshots != nil {
		s.registerSnapshotTools()
	}
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Info("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }
