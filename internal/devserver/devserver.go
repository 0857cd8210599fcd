// Package devserver builds a project once and serves its output directory
// over a loopback HTTP listener.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/observability"
)

const (
	// DefaultAddr is the address the dev server binds to unless overridden.
	DefaultAddr = "127.0.0.1:3031"
	// OutputDir is the directory under the compiler context that is served.
	OutputDir = "dist"
)

var (
	// ErrBind wraps listener failures such as the port being in use.
	ErrBind = errors.New("devserver: bind failed")
	// ErrAlreadyServing is returned by a second Serve call.
	ErrAlreadyServing = errors.New("devserver: already serving")
)

// Option configures a Server.
type Option func(*Server)

// WithAddr overrides DefaultAddr.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithAuditLogger records build and serve events.
func WithAuditLogger(l *observability.AuditLogger) Option {
	return func(s *Server) { s.audit = l }
}

// WithMetrics overrides the process-wide build metrics.
func WithMetrics(m *observability.BuildMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithOnReady registers a callback invoked with the bound address once the
// listener accepts connections.
func WithOnReady(fn func(addr string)) Option {
	return func(s *Server) { s.onReady = fn }
}

// Server owns exactly one Compiler.
type Server struct {
	compiler *core.Compiler
	addr     string
	audit    *observability.AuditLogger
	metrics  *observability.BuildMetrics
	onReady  func(addr string)

	mu      sync.Mutex
	started bool
	bound   string
	ready   chan struct{}
}

// New wraps a compiler.
func New(compiler *core.Compiler, opts ...Option) *Server {
	s := &Server{
		compiler: compiler,
		addr:     DefaultAddr,
		metrics:  observability.Metrics(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compiler returns the wrapped compiler.
func (s *Server) Compiler() *core.Compiler { return s.compiler }

// Root returns the served directory, <context>/dist.
func (s *Server) Root() string {
	return filepath.Join(s.compiler.Options().Context, OutputDir)
}

// Addr returns the bound listener address, or "" before binding.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Handler returns the static file handler for Root.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(noCacheMiddleware(http.FileServer(http.Dir(s.Root()))))
}

// Serve builds the project and then serves Root until ctx is cancelled. A
// build failure is returned unchanged before any socket is bound.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.started = true
	s.mu.Unlock()

	opts := s.compiler.Options()
	s.audit.LogBuildStart(opts.Context, len(opts.Entry))
	start := time.Now()
	err := s.compiler.Build(ctx)
	s.recordBuild(time.Since(start), err)
	if err != nil {
		slog.Error("Build failed, not serving", "error", err)
		return err
	}

	root := s.Root()
	if out := opts.Output.Path; out != "" && !sameDir(out, root) {
		slog.Warn("Output path differs from served directory", "output", out, "served", root)
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrBind, s.addr, err)
	}

	ctx, span := observability.StartServeSpan(ctx, ln.Addr().String(), root)
	defer span.End()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// TODO: mount the live-reload endpoint here once the client protocol is settled.

	s.mu.Lock()
	s.bound = ln.Addr().String()
	s.mu.Unlock()
	close(s.ready)

	s.audit.LogServeStart(s.bound, root)
	slog.Info("Dev server listening", "addr", "http://"+s.bound, "root", root)
	if s.onReady != nil {
		s.onReady(s.bound)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("Stopping dev server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Dev server shutdown failed", "error", err)
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		observability.RecordError(span, err)
		return fmt.Errorf("dev server error: %w", err)
	}
	return nil
}

func (s *Server) recordBuild(d time.Duration, err error) {
	var assets, size int
	if comp := s.compiler.LastCompilation(); err == nil && comp != nil {
		for _, a := range comp.Assets() {
			assets++
			size += len(a.Source)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordBuild(d, assets, size, err)
	}
	s.audit.LogBuildEnd(d, assets, err)
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
