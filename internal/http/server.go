package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const requestTimeout = 15 * time.Second

// Insights computes the analytics views served by the API.
type Insights interface {
	Dashboard(ctx context.Context, userID int64) (core.DashboardStats, error)
	Forecast(ctx context.Context, userID int64) (core.ForecastResult, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps http.Server with the analytics routes and middleware.
type Server struct {
	http.Server
	insights     Insights
	ready        Pinger
	corsOrigin   string
	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	logger       *log.Logger
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer builds the API server. ready may be nil, in which case /readyz
// always reports ready.
func NewServer(addr string, insights Insights, ready Pinger, corsOrigin string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		insights:    insights,
		ready:       ready,
		corsOrigin:  corsOrigin,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
		logger:      logger,
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/analytics/stats/{userId}", s.withSecurityHeaders(s.handleStats))
	mux.HandleFunc("GET /api/analytics/forecast/{userId}", s.withSecurityHeaders(s.handleForecast))
	mux.HandleFunc("OPTIONS /api/analytics/", s.withSecurityHeaders(handlePreflight))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           withRequestID(log.Middleware(logger, requestIDFromHeader)(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.logger.InfoContext(ctx, "shutting down HTTP server",
			"rate_limit_hits", atomic.LoadInt64(&s.metrics.rateLimitHits),
			"suspicious_requests", atomic.LoadInt64(&s.metrics.suspiciousRequests))
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := extractClientIP(r)
		scoped := log.FromContext(ctx)
		httpLog := log.NewStructuredLogger(scoped)
		httpLog.LogHTTPStart(ctx, r, clientIP)

		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Vary", "Origin")
		}

		if detectSuspiciousRequest(r, s.metrics) {
			scoped.WarnContext(ctx, "suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.UserAgent())
		}

		if r.Method == http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			scoped.WarnContext(ctx, "rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// withRequestID assigns every request an ID, keeping a well-formed one sent by
// the client, and echoes it in the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestIDFromHeader(r)
		if id == "" {
			id = generateRequestID()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.ready.Ping(ctx); err != nil {
		s.logger.Failure(ctx, "readiness check failed", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"backend": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "backend": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	stats, err := s.insights.Dashboard(ctx, userID)
	if err != nil {
		s.fail(w, r, log.OpDashboard, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.insights.Forecast(ctx, userID)
	if err != nil {
		s.fail(w, r, log.OpForecast, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// fail maps a service error onto a status code. Internal details stay in the log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, userID int64, err error) {
	ctx := r.Context()
	errType := log.ErrorTypeDatabase

	switch {
	case errors.Is(err, core.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	case errors.Is(err, context.DeadlineExceeded):
		errType = log.ErrorTypeTimeout
	}

	log.NewStructuredLogger(log.FromContext(ctx)).
		LogError(ctx, "failed to compute analytics", err, errType, op, log.NewFields().WithUser(userID))
	writeError(w, http.StatusInternalServerError, "failed to load analytics data")
}
