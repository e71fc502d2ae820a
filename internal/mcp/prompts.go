package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"corkboard/internal/render"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("case_review",
		mcp.WithPromptDescription("Walk through the evidence on the board and suggest new leads"),
		mcp.WithArgument("focus",
			mcp.ArgumentDescription("A suspect, place or theory to concentrate on (optional)"),
		),
	), s.handleCaseReviewPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("pin_evidence",
		mcp.WithPromptDescription("Turn a block of raw notes into pinned notes and strings"),
		mcp.WithArgument("notes",
			mcp.ArgumentDescription("Free-form notes, one fact per line"),
			mcp.RequiredArgument(),
		),
	), s.handlePinEvidencePrompt)
}

func (s *Server) handleCaseReviewPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	focus := req.Params.Arguments["focus"]

	var sb strings.Builder
	state := s.board.State()
	for _, it := range state.Items {
		fmt.Fprintf(&sb, "- [%s %s] %s\n", it.Type, it.ID, render.PlainText(it.Content))
	}
	for _, c := range state.Connections {
		fmt.Fprintf(&sb, "- %s string: %s -> %s\n", c.Type, c.From, c.To)
	}
	if sb.Len() == 0 {
		sb.WriteString("(the board is empty)\n")
	}

	ask := "Review the case."
	if focus != "" {
		ask = fmt.Sprintf("Review the case with a focus on %q.", focus)
	}
	return &mcp.GetPromptResult{
		Description: "Review the evidence on the corkboard",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`%s This is what is pinned to the board:

%s
1. Summarize what the evidence says and which items the strings tie together.
2. Point out items with no strings that may belong to an existing thread.
3. Suggest up to three leads. Add each one with add_task, and connect related items with connect_items.

Do not delete items or clear the board.`, ask, sb.String()),
				},
			},
		},
	}, nil
}

func (s *Server) handlePinEvidencePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	notes := req.Params.Arguments["notes"]
	return &mcp.GetPromptResult{
		Description: "Pin raw notes to the board",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Pin these notes to the corkboard:

%s

1. Use add_note once per fact. Leave x and y out so the layout engine finds a free spot.
2. Use list_board to see what was already there.
3. Connect facts that share a person or a place with connect_items. Use curved strings for guesses and straight ones for confirmed links.`, notes),
				},
			},
		},
	}, nil
}
