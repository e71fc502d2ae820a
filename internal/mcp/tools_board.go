package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"corkboard/internal/domain"
	"corkboard/internal/render"
	"corkboard/internal/service"
)

func (s *Server) registerBoardTools() {
	// ── list_board ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_board",
		mcp.WithDescription("List every item and connection on the board. Item text is returned without markup."),
		mcp.WithString("type", mcp.Description("Filter items by type: note or photo (optional)")),
	), s.handleListBoard)

	// ── add_note ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Pin a sticky note. Position is auto-calculated if not provided."),
		mcp.WithString("content", mcp.Description("Note text; simple HTML (<b>, <i>, <br>) is kept")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
	), s.handleAddNote)

	// ── add_photo ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_photo",
		mcp.WithDescription("Pin a photo. The image may be a data URI, an http(s) URL, or a local file path."),
		mcp.WithString("image", mcp.Description("Data URI, URL, or file path"), mcp.Required()),
		mcp.WithString("caption", mcp.Description("Caption under the photo (optional)")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
	), s.handleAddPhoto)

	// ── update_item_content ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_item_content",
		mcp.WithDescription("Replace the text of a note or the caption of a photo"),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New content"), mcp.Required()),
	), s.handleUpdateItemContent)

	// ── move_item ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Move an item to a new top-left position"),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveItem)

	// ── rotate_item ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rotate_item",
		mcp.WithDescription("Set an item's rotation in degrees (clockwise, not normalized)"),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithNumber("degrees", mcp.Description("Rotation in degrees"), mcp.Required()),
	), s.handleRotateItem)

	// ── bring_to_front ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("bring_to_front",
		mcp.WithDescription("Stack an item above everything else"),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
	), s.handleBringToFront)

	// ── arrange_board ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_board",
		mcp.WithDescription("Lay every item out in tidy rows, keeping their stacking order"),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 40)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 40)")),
	), s.handleArrangeBoard)

	// ── delete_item (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_item",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete an item and every string attached to it."),
		mcp.WithString("itemId", mcp.Description("Item ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteItem)

	// ── clear_board (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_board",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove every item and connection. Only runs with confirm=true; ask the user first."),
		mcp.WithBoolean("confirm", mcp.Description("Must be true, after the user agreed"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearBoard)

	// ── export_board_svg ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_board_svg",
		mcp.WithDescription("Render the whole board as an SVG document"),
		mcp.WithNumber("padding", mcp.Description("Margin around the board in pixels (default 40)")),
	), s.handleExportSVG)
}

type itemSummary struct {
	ID       string          `json:"id"`
	Type     domain.ItemType `json:"type"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	Rotation float64         `json:"rotation"`
	Width    float64         `json:"width"`
	ZIndex   int64           `json:"zIndex"`
	Text     string          `json:"text"`
	Image    string          `json:"image,omitempty"`
}

func summarizeItem(it domain.Item) itemSummary {
	sum := itemSummary{
		ID:       it.ID,
		Type:     it.Type,
		X:        it.X,
		Y:        it.Y,
		Rotation: it.Rotation,
		Width:    it.Width,
		ZIndex:   it.ZIndex,
		Text:     render.PlainText(it.Content),
	}
	// Inline images can be megabytes; agents only need to know one is there.
	switch {
	case strings.HasPrefix(it.Image, "data:"):
		media, _, _ := strings.Cut(strings.TrimPrefix(it.Image, "data:"), ";")
		sum.Image = "inline " + media
	default:
		sum.Image = it.Image
	}
	return sum
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	state := s.board.State()
	filter := domain.ItemType(getString(args, "type", ""))

	items := make([]itemSummary, 0, len(state.Items))
	for _, it := range state.Items {
		if filter != "" && it.Type != filter {
			continue
		}
		items = append(items, summarizeItem(it))
	}
	return jsonResult(map[string]any{
		"items":       items,
		"connections": state.Connections,
	})
}

func (s *Server) handleAddNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	content := getString(args, "content", "")
	probe := domain.Item{Type: domain.ItemTypeNote, Width: 200, Content: content}
	pos := s.position(args, probe)

	it, err := s.board.AddNote(ctx, pos, content)
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return jsonResult(summarizeItem(it))
}

func (s *Server) handleAddPhoto(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	image, err := requireString(args, "image")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(image, "data:") && !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") {
		image, err = service.ImageDataURI(image)
		if err != nil {
			return nil, fmt.Errorf("load image: %w", err)
		}
	}
	caption := getString(args, "caption", "")
	probe := domain.Item{Type: domain.ItemTypePhoto, Width: 240, Image: image, Content: caption}
	pos := s.position(args, probe)

	it, err := s.board.AddPhoto(ctx, pos, image, caption)
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizeItem(it))
}

func (s *Server) handleUpdateItemContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "itemId")
	if err != nil {
		return nil, err
	}
	content, _ := args["content"].(string)
	if _, err := s.board.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Item %s content updated", id)), nil
}

func (s *Server) handleMoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "itemId")
	if err != nil {
		return nil, err
	}
	x, err := requireFloat(args, "x")
	if err != nil {
		return nil, err
	}
	y, err := requireFloat(args, "y")
	if err != nil {
		return nil, err
	}
	if _, err := s.board.MoveItem(ctx, id, x, y); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Item %s moved to (%.0f, %.0f)", id, x, y)), nil
}

func (s *Server) handleRotateItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "itemId")
	if err != nil {
		return nil, err
	}
	deg, err := requireFloat(args, "degrees")
	if err != nil {
		return nil, err
	}
	if _, err := s.board.RotateItem(ctx, id, deg); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Item %s rotated to %.1f°", id, deg)), nil
}

func (s *Server) handleBringToFront(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "itemId")
	if err != nil {
		return nil, err
	}
	it, err := s.board.BringToFront(ctx, id)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Item %s is on top (z=%d)", id, it.ZIndex)), nil
}

func (s *Server) handleArrangeBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	startX := getFloat(args, "startX", Padding)
	startY := getFloat(args, "startY", Padding)

	spots := s.layout.Arrange(s.board.State().Items, startX, startY)
	for id, p := range spots {
		s.board.Apply(id, func(it *domain.Item) { it.X, it.Y = p.X, p.Y })
	}
	if err := s.board.Flush(ctx); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Arranged %d item(s)", len(spots))), nil
}

func (s *Server) handleDeleteItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "itemId")
	if err != nil {
		return nil, err
	}
	removed, err := s.board.RemoveItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	if !removed {
		return textResult(fmt.Sprintf("Item %s was not on the board", id)), nil
	}
	return textResult(fmt.Sprintf("Item %s deleted", id)), nil
}

func (s *Server) handleClearBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	confirm := getBool(req.GetArguments(), "confirm")
	err := s.board.Clear(ctx, service.ConfirmFunc(func(context.Context, string, string) bool { return confirm }))
	if errors.Is(err, domain.ErrNotConfirmed) {
		return textResult("Board not cleared: confirm=true is required after the user agrees"), nil
	}
	if err != nil {
		return nil, err
	}
	return textResult("Board cleared"), nil
}

func (s *Server) handleExportSVG(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	padding := getFloat(req.GetArguments(), "padding", 40)
	return textResult(string(render.SVG(s.board.Scene(nil), padding))), nil
}

// position honours explicit coordinates, else asks the layout engine for a
// free spot sized for probe.
func (s *Server) position(args map[string]any, probe domain.Item) domain.Point {
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX && hasY {
		return domain.Point{X: x, Y: y}
	}
	return s.layout.NextPosition(s.board.State().Items, probe.Width, render.EstimateHeight(probe))
}
