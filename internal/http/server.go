package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"contas/internal/core"
	applog "contas/internal/log"
	"contas/internal/metrics"
	"contas/internal/middleware/ratelimit"
	"contas/internal/middleware/security"
	"contas/internal/middleware/trace"
	"contas/internal/services"
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Logger    *applog.Logger
	Metrics   *metrics.Metrics
	RateLimit ratelimit.Config
	Headers   security.HeadersConfig
	ClientIP  *security.ClientIPResolver
	Locale    string
	// Ready runs extra readiness checks after the store ping.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	svc     *services.ObligationService
	metrics *metrics.Metrics
	limiter *ratelimit.Limiter
	locale  string
	ready   func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.ObligationService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.RateLimit.RequestsPerMinute == 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}
	if opts.Headers == (security.HeadersConfig{}) {
		opts.Headers = security.DefaultHeadersConfig()
	}
	if opts.ClientIP == nil {
		opts.ClientIP, _ = security.NewClientIPResolver()
	}
	if opts.Locale == "" {
		opts.Locale = core.LocalePtBR
	}

	s := &Server{
		svc:     svc,
		metrics: opts.Metrics,
		limiter: ratelimit.NewLimiter(opts.RateLimit),
		locale:  opts.Locale,
		ready:   opts.Ready,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	extractIP := opts.ClientIP.ClientIP
	var h http.Handler = mux
	h = s.limiter.Middleware(extractIP, s.handleRateLimited)(h)
	h = security.Headers(opts.Headers)(h)
	h = trace.NewMiddleware(extractIP, opts.Metrics).Middleware(h)
	h = applog.Middleware(opts.Logger, applog.ComponentHTTP)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/reports/categories", s.handleCategoryReport)
	mux.HandleFunc("GET /api/reports/year", s.handleYearReport)
	mux.HandleFunc("GET /api/upcoming", s.handleUpcoming)

	mux.HandleFunc("GET /api/obligations", s.handleListObligations)
	mux.HandleFunc("POST /api/obligations", s.handleCreateObligation)
	mux.HandleFunc("GET /api/obligations/{id}", s.handleGetObligation)
	mux.HandleFunc("PUT /api/obligations/{id}", s.handleUpdateObligation)
	mux.HandleFunc("DELETE /api/obligations/{id}", s.handleDeactivateObligation)
	mux.HandleFunc("GET /api/obligations/{id}/occurrences", s.handleOccurrences)

	mux.HandleFunc("POST /api/instances/{key}/paid", s.handleMarkPaid)
	mux.HandleFunc("DELETE /api/instances/{key}/paid", s.handleMarkUnpaid)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleUpsertCategory)
	mux.HandleFunc("GET /api/credit-cards", s.handleListCreditCards)
	mux.HandleFunc("POST /api/credit-cards", s.handleUpsertCreditCard)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := s.svc.Ping(ctx)
	if check == nil && s.ready != nil {
		check = s.ready(ctx)
	}
	if check != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, check.Error())
		ErrorResponse(ctx, http.StatusServiceUnavailable, CodeUnavailable, "not ready").Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(r.Context(), http.StatusTooManyRequests, CodeRateLimited,
		"Rate limit exceeded. Please try again later.").Write(w)
}
