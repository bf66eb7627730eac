// Package server provides the HTTP API for résumé tailoring, project
// reconciliation and the account endpoints that issue bearer credentials.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-tailor/internal/auth"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/merge"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

const defaultMaxBodyBytes = 2 << 20

// Tailorer runs one tailoring request, writing progress events to out.
type Tailorer interface {
	Run(ctx context.Context, token string, req *tailoring.TailorRequest, out tailoring.Emitter)
}

// Merger reconciles uploaded projects with a user's stored projects.
type Merger interface {
	Merge(ctx context.Context, userID uuid.UUID, incoming []types.ParsedProject, autoApply bool) (*merge.Outcome, error)
}

// ResumeParser extracts projects from résumé text.
type ResumeParser interface {
	Parse(ctx context.Context, resumeText string) ([]types.ParsedProject, error)
}

// ResumeStore persists tailored résumés. GetResume returns nil when the
// résumé does not exist or belongs to someone else.
type ResumeStore interface {
	SaveResume(ctx context.Context, userID uuid.UUID, job types.JobDescription, resume types.TailoredResume) (uuid.UUID, error)
	GetResume(ctx context.Context, userID, id uuid.UUID) (*db.SavedResume, error)
}

// Accounts registers and logs in users.
type Accounts interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.Account, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.Account, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port         int
	DevMode      bool  // include diagnostic details in error bodies
	MaxBodyBytes int64 // request body cap, 2 MiB when zero
	// WriteTimeout bounds a whole response, tailoring streams included.
	// Use WriteTimeoutFor to derive it from the agent ceilings.
	WriteTimeout time.Duration
}

// DefaultWriteTimeout applies when Config.WriteTimeout is zero.
const DefaultWriteTimeout = 10 * time.Minute

// writeGrace covers profile loading and answer decoding around an agent run.
const writeGrace = time.Minute

// WriteTimeoutFor returns a write timeout that outlasts the longest of the
// given agent ceilings, so a run that hits its ceiling can still write its
// terminal event.
func WriteTimeoutFor(ceilings ...time.Duration) time.Duration {
	var longest time.Duration
	for _, c := range ceilings {
		longest = max(longest, c)
	}
	if longest <= 0 {
		return DefaultWriteTimeout
	}
	return longest + writeGrace
}

// Deps are the shared handles the server routes to. They are constructed
// once by the caller and are safe for concurrent use.
type Deps struct {
	Tailor   Tailorer
	Merger   Merger
	Parser   ResumeParser
	Resumes  ResumeStore
	Accounts Accounts
	Tokens   *auth.TokenService
	Health   Pinger
	Limiter  *ratelimit.Limiter
	Logger   logrus.FieldLogger
}

// Server represents the HTTP server
type Server struct {
	cfg        Config
	deps       Deps
	logger     logrus.FieldLogger
	handler    http.Handler
	httpServer *http.Server
}

// New creates a new server instance and registers its routes.
func New(cfg Config, deps Deps) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{cfg: cfg, deps: deps, logger: logger}

	requireAuth := middleware.AuthMiddleware(deps.Tokens.AsTokenValidator(), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// The orchestrator authenticates the stream itself so that credential
	// failures arrive as a terminal event.
	mux.HandleFunc("POST /api/tailor/stream", s.handleTailorStream)

	mux.Handle("POST /api/projects/merge", requireAuth(http.HandlerFunc(s.handleMergeProjects)))
	mux.Handle("POST /api/resume/parse", requireAuth(http.HandlerFunc(s.handleParseResume)))
	mux.Handle("POST /api/resumes", requireAuth(http.HandlerFunc(s.handleSaveResume)))
	mux.Handle("GET /api/resumes/{id}", requireAuth(http.HandlerFunc(s.handleGetResume)))

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	var h http.Handler = mux
	h = s.withCORS(h)
	h = s.withLogging(h)
	if deps.Limiter != nil {
		h = s.withRateLimit(h)
	}
	s.handler = h

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("Server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.deps.Limiter != nil {
		s.deps.Limiter.Stop()
	}
	s.logger.Info("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs. It forwards
// Flush so streaming handlers still work behind it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		entry := s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote":      clientID(r),
		})
		if status >= http.StatusInternalServerError {
			entry.Warn("Request failed")
		} else {
			entry.Info("Request completed")
		}
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.deps.Limiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID identifies the caller for rate limiting by remote IP.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"client": clientID(r),
		"limit":  info.Limit,
	}).Warn("Rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Health.Ping(ctx); err != nil {
			s.logger.WithError(err).Warn("Health check failed")
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and a client-safe message. Details are
// included only in dev mode.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := map[string]string{"error": publicMessage(err, status)}
	if s.cfg.DevMode && status >= http.StatusUnprocessableEntity {
		body["details"] = err.Error()
	}

	entry := s.logger.WithError(err).WithFields(logrus.Fields{"path": r.URL.Path, "status": status})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	s.jsonResponse(w, status, body)
}
