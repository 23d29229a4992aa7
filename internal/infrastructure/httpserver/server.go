// Package httpserver assembles the HTTP surface: the health endpoint, the
// OAuth authorization server, and the token-guarded MCP endpoint.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/outliyr/x-search-mcp/internal/infrastructure/oauth"
)

const shutdownGrace = 10 * time.Second

// Options configures the composed server.
type Options struct {
	Addr string
	// MCPHandler serves /mcp (streamable HTTP or websocket).
	MCPHandler http.Handler
	// Auth guards /mcp. Required.
	Auth Authorizer
	// OAuth, when set, mounts the authorization-server routes and starts
	// its code sweeper.
	OAuth  *oauth.Provider
	Logger *slog.Logger
	// ResourceMetadataURL is advertised in 401 responses when set.
	ResourceMetadataURL string
}

// Server is the process-wide HTTP listener.
type Server struct {
	opts   Options
	logger *slog.Logger
	server *http.Server
}

// New builds the server and its routing table.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{opts: opts, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.OAuth != nil {
		opts.OAuth.Routes(mux)
	}
	mux.Handle("/mcp", s.requireAuth(opts.MCPHandler))

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.logRequests(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No WriteTimeout: /mcp holds SSE streams open.
	}
	return s
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then drains connections.
func (s *Server) Start(ctx context.Context) error {
	if s.opts.OAuth != nil {
		s.opts.OAuth.StartSweeper(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.opts.Addr))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
