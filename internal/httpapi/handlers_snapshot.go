package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := s.snapshots.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createSnapshotRequest struct {
	Label string `json:"label"`
}

func (s *Server) createSnapshot(w http.ResponseWriter, r *http.Request) {
	var req createSnapshotRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Label == "" {
		req.Label = "api"
	}
	snap, err := s.snapshots.Save(r.Context(), req.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// restoreSnapshot handles POST /api/snapshots/{id}/restore?confirm=true
func (s *Server) restoreSnapshot(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := s.snapshots.Restore(r.Context(), chi.URLParam(r, "id"), confirmFlag(confirmed)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.board.State())
}
