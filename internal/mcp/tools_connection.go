package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"corkboard/internal/domain"
)

func (s *Server) registerConnectionTools() {
	// ── connect_items ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect_items",
		mcp.WithDescription("Pin a red string between two items. Straight strings are taut, curved ones sag."),
		mcp.WithString("from", mcp.Description("Source item ID"), mcp.Required()),
		mcp.WithString("to", mcp.Description("Target item ID"), mcp.Required()),
		mcp.WithString("type",
			mcp.Description("straight or curved (default straight)"),
			mcp.Enum(string(domain.ConnectionStraight), string(domain.ConnectionCurved)),
		),
	), s.handleConnectItems)

	// ── list_connection_paths ──────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_connection_paths",
		mcp.WithDescription("Resolve every drawable string to its endpoints and SVG path. Strings to missing items are skipped."),
		mcp.WithString("itemId", mcp.Description("Only strings touching this item (optional)")),
	), s.handleListConnectionPaths)
}

func (s *Server) handleConnectItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	from, err := requireString(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := requireString(args, "to")
	if err != nil {
		return nil, err
	}
	t := domain.ConnectionType(getString(args, "type", string(domain.ConnectionStraight)))

	c, err := s.board.Connect(ctx, from, to, t)
	if err != nil {
		return nil, err
	}
	return jsonResult(c)
}

type pathSummary struct {
	ConnectionID string                `json:"connectionId,omitempty"`
	From         string                `json:"from"`
	To           string                `json:"to"`
	Type         domain.ConnectionType `json:"type"`
	Start        domain.Point          `json:"start"`
	End          domain.Point          `json:"end"`
	D            string                `json:"d"`
}

func (s *Server) handleListConnectionPaths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	only := getString(req.GetArguments(), "itemId", "")

	paths := s.board.Paths()
	out := make([]pathSummary, 0, len(paths))
	for _, p := range paths {
		if only != "" && p.From != only && p.To != only {
			continue
		}
		out = append(out, pathSummary{
			ConnectionID: p.ConnectionID,
			From:         p.From,
			To:           p.To,
			Type:         p.Type,
			Start:        p.Start,
			End:          p.End,
			D:            p.SVG(),
		})
	}
	if len(out) == 0 {
		return textResult(fmt.Sprintf("No drawable strings (%d stored)", len(s.board.Connections()))), nil
	}
	return jsonResult(out)
}
