package mcpserver

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/service"
	"corkboard/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	kv := storage.NewMemoryKV()
	boardSvc := service.NewBoardService(
		board.New(board.Options{Rand: rand.New(rand.NewSource(7))}),
		storage.NewBoardRepository(kv, ""), nil, nil)
	require.NoError(t, boardSvc.Load(context.Background()))

	return New(Deps{
		Board:     boardSvc,
		Tasks:     service.NewTaskService(storage.NewTaskRepository(kv, ""), nil),
		Snapshots: service.NewSnapshotService(boardSvc, storage.NewSnapshotStore(kv, 5), nil),
	})
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestTools_AddConnectAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	res, err := s.handleAddNote(ctx, call(map[string]any{"content": "<b>butler</b> lied", "x": 100.0, "y": 100.0}))
	require.NoError(t, err)
	var note itemSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &note))
	assert.Equal(t, "butler lied", note.Text)

	res, err = s.handleAddNote(ctx, call(map[string]any{"content": "library, 9pm"}))
	require.NoError(t, err)
	var auto itemSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &auto))

	res, err = s.handleConnectItems(ctx, call(map[string]any{"from": note.ID, "to": auto.ID, "type": "curved"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"curved"`)

	res, err = s.handleListConnectionPaths(ctx, call(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"d": "M `)

	res, err = s.handleListBoard(ctx, call(map[string]any{"type": "note"}))
	require.NoError(t, err)
	var listed struct {
		Items       []itemSummary       `json:"items"`
		Connections []domain.Connection `json:"connections"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &listed))
	assert.Len(t, listed.Items, 2)
	assert.Len(t, listed.Connections, 1)
}

func TestTools_ConnectRejectsUnknownType(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleConnectItems(context.Background(), call(map[string]any{"from": "a", "to": "b", "type": "zigzag"}))
	assert.Error(t, err)
}

func TestTools_MoveMissingItem(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleMoveItem(context.Background(), call(map[string]any{"itemId": "ghost", "x": 1.0, "y": 2.0}))
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestTools_ClearBoardNeedsConfirm(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	_, err := s.handleAddNote(ctx, call(map[string]any{"content": "keep me"}))
	require.NoError(t, err)

	res, err := s.handleClearBoard(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "not cleared")
	assert.Len(t, s.board.State().Items, 1)

	res, err = s.handleClearBoard(ctx, call(map[string]any{"confirm": true}))
	require.NoError(t, err)
	assert.Equal(t, "Board cleared", resultText(t, res))
	assert.Empty(t, s.board.State().Items)
}

func TestTools_DeleteItemIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	res, err := s.handleDeleteItem(ctx, call(map[string]any{"itemId": "never"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "was not on the board")
}

func TestTools_ExportSVG(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	s.handleAddNote(ctx, call(map[string]any{"content": "exhibit A"}))

	res, err := s.handleExportSVG(ctx, call(nil))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.True(t, strings.HasPrefix(text, "<svg"), "got %.30s", text)
	assert.Contains(t, text, "exhibit A")
}

func TestTools_Tasks(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	res, err := s.handleAddTask(ctx, call(map[string]any{"text": "find the knife", "priority": "high"}))
	require.NoError(t, err)
	var task domain.Task
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &task))
	assert.Equal(t, domain.PriorityHigh, task.Priority)

	_, err = s.handleToggleTask(ctx, call(map[string]any{"taskId": float64(task.ID)}))
	require.NoError(t, err)

	res, err = s.handleListTasks(ctx, call(nil))
	require.NoError(t, err)
	var lists struct {
		Open []domain.Task `json:"open"`
		Done []domain.Task `json:"done"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &lists))
	assert.Len(t, lists.Open, 2)
	assert.Len(t, lists.Done, 2)

	_, err = s.handleAddTask(ctx, call(map[string]any{"text": "  "}))
	assert.ErrorIs(t, err, domain.ErrEmptyTask)
}

func TestTools_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	s.handleAddNote(ctx, call(map[string]any{"content": "first"}))

	res, err := s.handleSaveSnapshot(ctx, call(map[string]any{"label": "before"}))
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &snap))

	s.handleAddNote(ctx, call(map[string]any{"content": "second"}))

	res, err = s.handleRestoreSnapshot(ctx, call(map[string]any{"snapshotId": snap.ID}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "not restored")
	assert.Len(t, s.board.State().Items, 2)

	_, err = s.handleRestoreSnapshot(ctx, call(map[string]any{"snapshotId": snap.ID, "confirm": true}))
	require.NoError(t, err)
	assert.Len(t, s.board.State().Items, 1)
}

func TestBoardResource(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	s.handleAddNote(ctx, call(map[string]any{"content": "clue"}))

	contents, err := s.handleBoardResource(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents).Text

	var state domain.BoardState
	require.NoError(t, json.Unmarshal([]byte(text), &state))
	assert.Len(t, state.Items, 1)
	assert.NotNil(t, state.Connections)
}

func TestCaseReviewPrompt(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)
	s.handleAddNote(ctx, call(map[string]any{"content": "muddy boots"}))

	var req mcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"focus": "the gardener"}
	res, err := s.handleCaseReviewPrompt(ctx, req)
	require.NoError(t, err)
	text := res.Messages[0].Content.(mcp.TextContent).Text
	assert.Contains(t, text, "muddy boots")
	assert.Contains(t, text, `"the gardener"`)
}
