// Package server runs an http.Handler on a TCP address until its context
// ends, then drains in-flight requests. The codevf-fakeapi binary uses it to
// host the fake CodeVF API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	// DefaultAddress is used when New is given an empty address.
	DefaultAddress = "localhost:7450"
	// DefaultShutdownTimeout bounds how long Run waits for in-flight requests.
	DefaultShutdownTimeout = 30 * time.Second
)

// Server hosts one handler. It can be bound once.
type Server struct {
	http   *http.Server
	log    *slog.Logger
	drain  time.Duration
	mu     sync.Mutex
	bound  net.Listener
	closed bool
}

// New returns a Server for handler on addr (DefaultAddress when empty).
// Logs go to logger; nil discards them.
func New(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddress
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       time.Minute,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		log:   logger,
		drain: DefaultShutdownTimeout,
	}
}

// Addr is the bound address, which differs from the configured one when the
// port is 0. It is empty until Run or Start has bound the socket.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound == nil {
		return ""
	}
	return s.bound.Addr().String()
}

func (s *Server) bind() (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, http.ErrServerClosed
	}
	if s.bound != nil {
		return nil, errors.New("server already started")
	}
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	s.bound = ln
	return ln, nil
}

// Start binds and serves, blocking until Shutdown. A clean stop returns
// http.ErrServerClosed.
func (s *Server) Start() error {
	ln, err := s.bind()
	if err != nil {
		return err
	}
	s.log.Info("fake api listening", "addr", ln.Addr().String())
	return s.http.Serve(ln)
}

// Shutdown stops accepting connections and waits for active requests until
// ctx ends. Calling it on a server that never started is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.bound != nil
	s.closed = true
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.log.Info("draining connections")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("fake api stopped")
	return nil
}

// Run serves until ctx is cancelled, then shuts down within the drain
// timeout. It returns nil after a clean stop.
func (s *Server) Run(ctx context.Context) error {
	served := make(chan error, 1)
	go func() { served <- s.Start() }()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drain)
	defer cancel()
	if err := s.Shutdown(stopCtx); err != nil {
		return err
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe runs the server until SIGINT or SIGTERM.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}
