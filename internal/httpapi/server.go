// Package httpapi serves the board over a small JSON API, for scripts,
// browser extensions and dashboards that sit outside the terminal.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"corkboard/internal/metrics"
	"corkboard/internal/service"
)

// Deps holds everything the API serves.
type Deps struct {
	Board          *service.BoardService
	Tasks          *service.TaskService
	Snapshots      *service.SnapshotService
	Metrics        *metrics.Collector
	AllowedOrigins []string
}

type Server struct {
	board     *service.BoardService
	tasks     *service.TaskService
	snapshots *service.SnapshotService
	metrics   *metrics.Collector
	origins   []string
}

func New(deps Deps) *Server {
	return &Server{
		board:     deps.Board,
		tasks:     deps.Tasks,
		snapshots: deps.Snapshots,
		metrics:   deps.Metrics,
		origins:   deps.AllowedOrigins,
	}
}

// Routes builds the router with all middleware attached.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(instrument(s.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/board", s.getBoard)
		r.Delete("/board", s.clearBoard)
		r.Get("/board/paths", s.getPaths)
		r.Get("/board.svg", s.getSVG)
		r.Get("/board.png", s.getPNG)

		r.Post("/items", s.createItem)
		r.Patch("/items/{id}", s.patchItem)
		r.Delete("/items/{id}", s.deleteItem)

		r.Post("/connections", s.createConnection)

		if s.tasks != nil {
			r.Get("/tasks", s.listTasks)
			r.Post("/tasks", s.createTask)
			r.Post("/tasks/{id}/toggle", s.toggleTask)
			r.Delete("/tasks/{id}", s.deleteTask)
		}

		if s.snapshots != nil {
			r.Get("/snapshots", s.listSnapshots)
			r.Post("/snapshots", s.createSnapshot)
			r.Post("/snapshots/{id}/restore", s.restoreSnapshot)
		}
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	state := s.board.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"items":       len(state.Items),
		"connections": len(state.Connections),
	})
}

// Serve runs the API on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("[HTTP] listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("[HTTP] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
