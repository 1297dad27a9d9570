// Package gateway is the HTTP boundary. Its only job is moving task
// text into the dispatcher and mapping Failure kinds to status codes.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumenops/taskd/internal/config"
	"github.com/lumenops/taskd/internal/sandbox"
	"github.com/lumenops/taskd/internal/task"
)

// TaskRunner is what the gateway needs from the dispatcher; small
// interface so handler tests can inject a stub.
type TaskRunner interface {
	Dispatch(ctx context.Context, description string) (string, task.Result, error)
}

type Server struct {
	cfg        config.GatewayConfig
	runner     TaskRunner
	root       *sandbox.Root
	httpServer *http.Server
}

func New(cfg config.GatewayConfig, runner TaskRunner, root *sandbox.Root) *Server {
	s := &Server{cfg: cfg, runner: runner, root: root}
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: s.Router(),
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/run", s.handleRun)
	r.Get("/read", s.handleRead)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("task")
	if description == "" {
		writeError(w, http.StatusBadRequest, string(task.KindBadParams), "missing task parameter")
		return
	}

	reqID, result, err := s.runner.Dispatch(r.Context(), description)
	if err != nil {
		f := task.AsFailure(err)
		writeError(w, f.Kind.HTTPStatus(), string(f.Kind), f.Err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"request_id": reqID,
		"result":     result,
	})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, string(task.KindBadParams), "missing path parameter")
		return
	}

	content, err := s.root.ReadFile(path)
	switch {
	case errors.Is(err, sandbox.ErrEscape):
		writeError(w, http.StatusBadRequest, string(task.KindSandbox), err.Error())
		return
	case errors.Is(err, os.ErrNotExist):
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("file not found: %s", path))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, string(task.KindOperation), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(content)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]any{
		"status": "error",
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	})
}

// Run serves until ctx is cancelled, then drains with a short
// shutdown grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[gateway] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[gateway] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Printf("[gateway] shutdown complete")
	return nil
}
