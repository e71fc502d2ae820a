package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"corkboard/internal/domain"
	"corkboard/internal/render"
	"corkboard/internal/service"
)

const defaultPadding = 40.0

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.State())
}

// clearBoard handles DELETE /api/board?confirm=true
func (s *Server) clearBoard(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := s.board.Clear(r.Context(), confirmFlag(confirmed)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPaths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Paths())
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(render.SVG(s.board.Scene(nil), padding(r)))
}

func (s *Server) getPNG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := render.PNG(&buf, s.board.Scene(nil), padding(r)); err != nil {
		writeError(w, fmt.Errorf("render png: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

type createItemRequest struct {
	Type    domain.ItemType `json:"type" validate:"omitempty,oneof=note photo"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Content string          `json:"content"`
	Image   string          `json:"image" validate:"required_if=Type photo"`
}

// createItem handles POST /api/items
func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pos := domain.Point{X: req.X, Y: req.Y}
	var (
		it  domain.Item
		err error
	)
	switch req.Type {
	case domain.ItemTypeNote, "":
		it, err = s.board.AddNote(r.Context(), pos, req.Content)
	case domain.ItemTypePhoto:
		it, err = s.board.AddPhoto(r.Context(), pos, req.Image, req.Content)
	default:
		err = fmt.Errorf("%w: unknown item type %q", domain.ErrInvalidInput, req.Type)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

type patchItemRequest struct {
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Rotation *float64 `json:"rotation"`
	Content  *string  `json:"content"`
	Front    bool     `json:"front"`
}

// patchItem handles PATCH /api/items/{id}. Only fields present in the
// body change; "front": true restacks the item on top.
func (s *Server) patchItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req patchItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	it, err := s.board.UpdateItem(r.Context(), id, func(it *domain.Item) {
		if req.X != nil {
			it.X = *req.X
		}
		if req.Y != nil {
			it.Y = *req.Y
		}
		if req.Rotation != nil {
			it.Rotation = *req.Rotation
		}
		if req.Content != nil {
			it.Content = *req.Content
		}
	})
	if err == nil && req.Front {
		it, err = s.board.BringToFront(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// deleteItem handles DELETE /api/items/{id}. Unknown ids succeed.
func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	if _, err := s.board.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createConnectionRequest struct {
	From string                `json:"from" validate:"required"`
	To   string                `json:"to" validate:"required"`
	Type domain.ConnectionType `json:"type" validate:"omitempty,oneof=straight curved"`
}

// createConnection handles POST /api/connections
func (s *Server) createConnection(w http.ResponseWriter, r *http.Request) {
	var req createConnectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Type == "" {
		req.Type = domain.ConnectionStraight
	}
	c, err := s.board.Connect(r.Context(), req.From, req.To, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ── helpers ───────────────────────────────────────────────

func padding(r *http.Request) float64 {
	if v, err := strconv.ParseFloat(r.URL.Query().Get("padding"), 64); err == nil && v >= 0 {
		return v
	}
	return defaultPadding
}

func confirmFlag(ok bool) service.Confirmer {
	if ok {
		return service.Confirmed
	}
	return service.Declined
}
