// Package server hosts the optional HTTP endpoints of a watch session:
// live reload, Prometheus metrics and a health check.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/lesstask/internal/logging"
	"github.com/conneroisu/lesstask/internal/middleware"
	"github.com/conneroisu/lesstask/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Server is a small HTTP server bound to one address.
type Server struct {
	addr   string
	mux    *http.ServeMux
	logger logging.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listenAddr net.Addr
}

// New creates a server for addr with a /health endpoint.
func New(addr string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &Server{
		addr:   addr,
		mux:    http.NewServeMux(),
		logger: logger.WithComponent("server"),
	}
	s.mux.HandleFunc("/health", s.handleHealth)

	return s
}

// Handle registers handler for pattern.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Start binds the address and serves in the background until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           middleware.Chain(s.mux, middleware.Recover(s.logger), middleware.Logging(s.logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listenAddr = ln.Addr()
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, err, "HTTP server stopped", "addr", ln.Addr().String())
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Listening", "addr", ln.Addr().String())

	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenAddr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.Get().Short(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}
