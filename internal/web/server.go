package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/boozedog/corsserve/internal/config"
	"github.com/boozedog/corsserve/internal/web/handler"
	"github.com/boozedog/corsserve/internal/web/middleware"
	"github.com/boozedog/corsserve/internal/web/watch"
)

// Server serves the content root with permissive CORS headers.
type Server struct {
	cfg *config.Config
	out io.Writer
	srv *http.Server
}

// NewServer creates a new server. The startup announcement is written to out.
func NewServer(cfg *config.Config, out io.Writer) *Server {
	return &Server{
		cfg: cfg,
		out: out,
	}
}

// Handler returns the full request handler: routing, file serving and the
// middleware that decorates every response.
func (s *Server) Handler() http.Handler {
	h := handler.New(http.Dir(s.cfg.ContentRoot))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.Files)
	mux.HandleFunc("/", h.Unsupported)

	return middleware.Chain(mux,
		middleware.Logging(slog.Default()),
		middleware.CORS(),
	)
}

// ListenAndServe validates the content root, binds the configured port on all
// interfaces and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. It takes ownership
// of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := watch.NewWatcher(s.cfg.ContentRoot, watch.DefaultDebounce, logChanges)
	if err != nil {
		slog.Warn("content watcher disabled", "root", s.cfg.ContentRoot, "err", err)
	} else {
		defer func() { _ = w.Close() }()
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	port := s.cfg.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	fmt.Fprintf(s.out, "Serving from '%s' on port %d with CORS enabled...\n", s.cfg.ContentRoot, port)

	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func logChanges(paths []string) {
	if len(paths) == 0 {
		return
	}
	slog.Info("content changed", "count", len(paths), "first", paths[0])
}
