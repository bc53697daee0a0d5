// Package http serves the sensor tree, the web UI and the live feed.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hwmonitor/internal/logger"
)

type Server struct {
	addr    string
	handler http.Handler
	log     logger.Logger
	srv     *http.Server
}

func NewServer(addr string, handler http.Handler, log logger.Logger) *Server {
	return &Server{addr: addr, handler: handler, log: log}
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http: starting server", "address", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("http: server shutdown error", "error", err)
			return err
		}
		s.log.Info("http: server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
