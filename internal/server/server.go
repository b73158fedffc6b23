// Package server provides the HTTP API for nh-rep-finder.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/nh-rep-finder/internal/lookup"
	"github.com/jonathan/nh-rep-finder/internal/openstates"
	"github.com/jonathan/nh-rep-finder/internal/refdata"
	"github.com/jonathan/nh-rep-finder/internal/server/middleware"
	"github.com/jonathan/nh-rep-finder/internal/server/ratelimit"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// SnapshotStore is the reference data handle the server reads and reloads.
type SnapshotStore interface {
	Snapshot() *refdata.Snapshot
	Reload(ctx context.Context) (*refdata.Snapshot, error)
	ReloadCounts() (ok, failed int64)
}

// BillLinker resolves bill pages.
type BillLinker interface {
	BillLink(ctx context.Context, bill, year string) (*openstates.BillLink, error)
}

// Config holds server configuration
type Config struct {
	Port            int
	AllowedOrigins  []string
	RateLimitPerMin int
	DebugRoutes     bool
	GitCommit       string
	// ReloadInterval enables periodic reloads when positive.
	ReloadInterval time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	store          SnapshotStore
	lookup         *lookup.Service
	bills          BillLinker
	rateLimiter    *ratelimit.Limiter
	gitCommit      string
	reloadInterval time.Duration
	startedAt      time.Time
}

// New creates a new server instance. bills may be nil, in which case bill links report ErrNoAPIKey.
func New(cfg Config, store SnapshotStore, svc *lookup.Service, bills BillLinker) *Server {
	s := &Server{
		store:          store,
		lookup:         svc,
		bills:          bills,
		rateLimiter:    ratelimit.NewLimiter(ratelimit.LoadConfig(cfg.RateLimitPerMin)),
		gitCommit:      cfg.GitCommit,
		reloadInterval: cfg.ReloadInterval,
		startedAt:      time.Now(),
	}
	if s.gitCommit == "" {
		s.gitCommit = "local"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lookup", s.handleLookup)
	mux.HandleFunc("GET /api/lookup-legislators", s.handleLookup)
	mux.HandleFunc("POST /api/lookup-legislators", s.handleLookup)
	mux.HandleFunc("GET /api/vote-map", s.handleVoteMap)
	mux.HandleFunc("GET /api/bill-link", s.handleBillLink)
	mux.HandleFunc("GET /house_key_votes.csv", s.handleVotesCSV)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /version", s.handleVersion)

	if cfg.DebugRoutes {
		mux.HandleFunc("GET /debug/floterials", s.handleDebugFloterials)
		mux.HandleFunc("GET /debug/base-map", s.handleDebugBaseMap)
		mux.HandleFunc("GET /debug/district", s.handleDebugDistrict)
		mux.HandleFunc("GET /debug/town", s.handleDebugTown)
	}

	handler := s.withRateLimit(
		middleware.RequestID(
			middleware.WithLogging(
				middleware.SecurityHeaders(
					middleware.CORS(cfg.AllowedOrigins)(mux)))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully.
// SIGHUP reloads the reference data.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				slog.Info("SIGHUP received, reloading reference data")
				if _, err := s.store.Reload(ctx); err != nil {
					slog.Error("reload failed, keeping current snapshot", "error", err)
				}
			}
		}
	}()

	if w, ok := s.store.(interface {
		Watch(context.Context, time.Duration)
	}); ok && s.reloadInterval > 0 {
		go w.Watch(ctx, s.reloadInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", s.httpServer.Addr, "commit", s.gitCommit)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.rateLimiter.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	slog.Info("server stopped")
	return nil
}

// withRateLimit applies the per-client, per-endpoint budget to API routes.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(middleware.ClientIP(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitResponse writes a 429 with a whole-second Retry-After.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	secs := int((info.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	slog.Warn("rate limit exceeded", "limit", info.Limit, "retry_after_s", secs)
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":      "Too many requests, please retry shortly.",
		"type":       KindRateLimited,
		"retryAfter": secs,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes the JSON error body for err with its mapped status.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err, "request_id", middleware.GetRequestID(r.Context()))
		msg = "internal error"
	}
	s.jsonResponse(w, status, ErrorResponse{
		Error:     msg,
		Type:      kind,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
