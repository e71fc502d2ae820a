package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"corkboard/internal/domain"
	"corkboard/internal/service"
)

type taskList struct {
	Open []domain.Task `json:"open"`
	Done []domain.Task `json:"done"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	open, done := service.Partition(tasks)
	if open == nil {
		open = []domain.Task{}
	}
	if done == nil {
		done = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, taskList{Open: open, Done: done})
}

type createTaskRequest struct {
	Text     string          `json:"text"`
	Priority domain.Priority `json:"priority" validate:"omitempty,oneof=high medium low"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := s.tasks.Add(r.Context(), req.Text, req.Priority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := s.tasks.Toggle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.tasks.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: task id must be an integer", domain.ErrInvalidInput)
	}
	return id, nil
}
