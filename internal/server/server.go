// Package server provides the HTTP REST API for the job matcher.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meghanahima/Resume-Matches-sub000/internal/db"
	"github.com/meghanahima/Resume-Matches-sub000/internal/matching"
	"github.com/meghanahima/Resume-Matches-sub000/internal/server/middleware"
	"github.com/meghanahima/Resume-Matches-sub000/internal/server/ratelimit"
)

// Matcher is the ranking entry point consumed by the match handler. Satisfied
// by *matching.Service.
type Matcher interface {
	Match(ctx context.Context, resumeID string, page, limit int) (*matching.Page, error)
	InvalidateAll()
}

// PostingWriter covers the job-posting mutations behind the CRUD endpoints.
// Satisfied by *db.JobPostingStore.
type PostingWriter interface {
	Create(ctx context.Context, input *db.JobPostingInput) (*db.JobPostingRow, error)
	Update(ctx context.Context, id uuid.UUID, input *db.JobPostingInput) (*db.JobPostingRow, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]db.JobPostingRow, int, error)
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	matcher     Matcher
	postings    PostingWriter
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	logger      *zap.Logger
}

// Config holds server configuration.
type Config struct {
	Port      int
	JWTSecret string
	RateLimit *ratelimit.Config
}

// New creates a new server instance over already-wired collaborators.
func New(cfg Config, matcher Matcher, postings PostingWriter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		matcher:     matcher,
		postings:    postings,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		validate:    validator.New(),
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze/get-jobs/{resumeId}", s.handleMatchJobs)

	mux.HandleFunc("GET /job-postings", s.handleListJobPostings)
	mux.HandleFunc("POST /job-postings", s.handleCreateJobPosting)
	mux.HandleFunc("PUT /job-postings/{id}", s.handleUpdateJobPosting)
	mux.HandleFunc("DELETE /job-postings/{id}", s.handleDeleteJobPosting)

	mux.HandleFunc("GET /health", s.handleHealth)

	auth := middleware.Auth(cfg.JWTSecret, logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(auth(s.withLogging(s.withCORS(mux)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // ranking a cold candidate can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds per-client rate limiting.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds()+1)))
			}
			s.logger.Warn("rate limit exceeded", zap.String("client", clientID))
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response in the envelope the API uses
// everywhere: {"success": false, "message": ...}.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// extractClientID extracts the client identifier from the request, the IP
// address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
