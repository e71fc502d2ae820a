package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corkboard/internal/board"
	"corkboard/internal/domain"
	"corkboard/internal/httpapi"
	"corkboard/internal/metrics"
	"corkboard/internal/service"
	"corkboard/internal/storage"
)

type testAPI struct {
	srv   *httptest.Server
	board *service.BoardService
}

func setupTestServer(t *testing.T) *testAPI {
	t.Helper()
	kv := storage.NewMemoryKV()
	m := metrics.New("corkboard")
	boardSvc := service.NewBoardService(
		board.New(board.Options{Rand: rand.New(rand.NewSource(3))}),
		storage.NewBoardRepository(kv, ""), nil, m)
	require.NoError(t, boardSvc.Load(context.Background()))

	api := httpapi.New(httpapi.Deps{
		Board:          boardSvc,
		Tasks:          service.NewTaskService(storage.NewTaskRepository(kv, ""), nil),
		Snapshots:      service.NewSnapshotService(boardSvc, storage.NewSnapshotStore(kv, 10), nil),
		Metrics:        m,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	ts := httptest.NewServer(api.Routes())
	t.Cleanup(ts.Close)
	return &testAPI{srv: ts, board: boardSvc}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	api := setupTestServer(t)
	resp := api.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestItemsLifecycle(t *testing.T) {
	api := setupTestServer(t)

	resp := api.do(t, http.MethodPost, "/api/items", map[string]any{"type": "note", "x": 100, "y": 80, "content": "motive?"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	note := decodeBody[domain.Item](t, resp)
	assert.Equal(t, domain.ItemTypeNote, note.Type)
	assert.InDelta(t, 100, note.X, 15)

	resp = api.do(t, http.MethodPost, "/api/items", map[string]any{"type": "photo", "image": "https://example.com/p.jpg"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	photo := decodeBody[domain.Item](t, resp)

	rot := 400.0
	resp = api.do(t, http.MethodPatch, "/api/items/"+note.ID, map[string]any{"rotation": rot, "front": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	patched := decodeBody[domain.Item](t, resp)
	assert.Equal(t, rot, patched.Rotation)
	assert.Equal(t, note.X, patched.X, "absent fields must not change")
	assert.GreaterOrEqual(t, patched.ZIndex, photo.ZIndex)

	resp = api.do(t, http.MethodPost, "/api/connections", map[string]any{"from": note.ID, "to": photo.ID, "type": "curved"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/board/paths", nil)
	paths := decodeBody[[]map[string]any](t, resp)
	assert.Len(t, paths, 1)

	resp = api.do(t, http.MethodDelete, "/api/items/"+photo.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/board", nil)
	state := decodeBody[domain.BoardState](t, resp)
	assert.Len(t, state.Items, 1)
	assert.Empty(t, state.Connections)
}

func TestItemErrors(t *testing.T) {
	api := setupTestServer(t)

	resp := api.do(t, http.MethodPatch, "/api/items/ghost", map[string]any{"x": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/items", map[string]any{"type": "sticker"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/items", map[string]any{"type": "photo", "image": "/tmp/x.png"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/connections", map[string]any{"from": "a", "to": "b", "type": "dotted"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/api/items/ghost", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRequestValidation(t *testing.T) {
	api := setupTestServer(t)

	cases := []struct {
		name string
		path string
		body map[string]any
	}{
		{"photo without image", "/api/items", map[string]any{"type": "photo", "x": 10}},
		{"connection without from", "/api/connections", map[string]any{"to": "b"}},
		{"connection without to", "/api/connections", map[string]any{"from": "a", "type": "straight"}},
		{"unknown priority", "/api/tasks", map[string]any{"text": "canvass", "priority": "urgent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := api.do(t, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeBody[map[string]string](t, resp)
			assert.Contains(t, body["error"], "invalid input")
		})
	}
	assert.Empty(t, api.board.State().Items)
}

func TestClearBoardRequiresConfirm(t *testing.T) {
	api := setupTestServer(t)
	api.do(t, http.MethodPost, "/api/items", map[string]any{"content": "x"})

	resp := api.do(t, http.MethodDelete, "/api/board", nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Len(t, api.board.State().Items, 1)

	resp = api.do(t, http.MethodDelete, "/api/board?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, api.board.State().Items)
}

func TestRenderEndpoints(t *testing.T) {
	api := setupTestServer(t)

	resp := api.do(t, http.MethodGet, "/api/board.png", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	api.do(t, http.MethodPost, "/api/items", map[string]any{"content": "<b>exhibit</b> B"})

	resp = api.do(t, http.MethodGet, "/api/board.svg?padding=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	var svg bytes.Buffer
	svg.ReadFrom(resp.Body)
	assert.True(t, strings.HasPrefix(svg.String(), "<svg"))

	resp = api.do(t, http.MethodGet, "/api/board.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var png bytes.Buffer
	png.ReadFrom(resp.Body)
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))
}

func TestTasksEndpoints(t *testing.T) {
	api := setupTestServer(t)

	resp := api.do(t, http.MethodPost, "/api/tasks", map[string]any{"text": "dust for prints"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	task := decodeBody[domain.Task](t, resp)
	assert.Equal(t, domain.PriorityMedium, task.Priority)

	resp = api.do(t, http.MethodPost, fmt.Sprintf("/api/tasks/%d/toggle", task.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[domain.Task](t, resp).Done)

	resp = api.do(t, http.MethodGet, "/api/tasks", nil)
	lists := decodeBody[struct {
		Open []domain.Task `json:"open"`
		Done []domain.Task `json:"done"`
	}](t, resp)
	assert.Len(t, lists.Open, 2)
	assert.Len(t, lists.Done, 2)

	resp = api.do(t, http.MethodPost, "/api/tasks", map[string]any{"text": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/tasks/abc/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/tasks/12345/toggle", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSnapshotEndpoints(t *testing.T) {
	api := setupTestServer(t)
	api.do(t, http.MethodPost, "/api/items", map[string]any{"content": "v1"})

	resp := api.do(t, http.MethodPost, "/api/snapshots", map[string]any{"label": "checkpoint"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	snap := decodeBody[domain.Snapshot](t, resp)
	assert.Equal(t, 1, snap.Items)

	api.do(t, http.MethodPost, "/api/items", map[string]any{"content": "v2"})

	resp = api.do(t, http.MethodPost, "/api/snapshots/"+snap.ID+"/restore", nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/snapshots/"+snap.ID+"/restore?confirm=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[domain.BoardState](t, resp).Items, 1)

	resp = api.do(t, http.MethodPost, "/api/snapshots/nope/restore?confirm=true", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/snapshots", nil)
	assert.Len(t, decodeBody[[]domain.Snapshot](t, resp), 2)
}

func TestMetricsEndpoint(t *testing.T) {
	api := setupTestServer(t)
	api.do(t, http.MethodPost, "/api/items", map[string]any{"content": "counted"})

	resp := api.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	assert.Contains(t, body.String(), `corkboard_items_created_total{type="note"} 1`)
	assert.Contains(t, body.String(), `route="/api/items"`)
}
