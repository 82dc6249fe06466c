// Package http exposes the tracker engine as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cctracker/internal/cache"
	"cctracker/internal/log"
	"cctracker/internal/middleware/ratelimit"
	"cctracker/internal/middleware/security"
	"cctracker/internal/middleware/trace"
	"cctracker/internal/services"
	"cctracker/internal/state"
)

const (
	dashboardCacheSize = 32
	dashboardCacheTTL  = 5 * time.Minute
	maxBodyBytes       = 1 << 20
	maxImportBytes     = 10 << 20
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Store     *state.Store
	Cards     *services.CardService
	Entries   *services.EntryService
	Transfer  *services.TransferService
	Dashboard *cache.DashboardCache
	// Ready checks the persistence backend; nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger

	RateLimitPerMinute int
}

type Server struct {
	http.Server
	store     *state.Store
	cards     *services.CardService
	entries   *services.EntryService
	transfer  *services.TransferService
	dashboard *cache.DashboardCache
	ready     func(ctx context.Context) error
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// The dashboard cache is created when Deps leaves it nil.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	dashboard := deps.Dashboard
	if dashboard == nil {
		dashboard = cache.NewDashboardCache(dashboardCacheSize, dashboardCacheTTL)
	}

	s := &Server{
		store:     deps.Store,
		cards:     deps.Cards,
		entries:   deps.Entries,
		transfer:  deps.Transfer,
		dashboard: dashboard,
		ready:     deps.Ready,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		detector: security.NewDetector(logger),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.writeRateLimited)(handler)
	handler = s.tracer.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/meta", s.handleMeta)
	mux.HandleFunc("PUT /api/theme", s.handleTheme)
	mux.HandleFunc("PUT /api/view", s.handleView)
	mux.HandleFunc("PUT /api/selection", s.handleSelection)

	mux.HandleFunc("GET /api/cards", s.handleListCards)
	mux.HandleFunc("POST /api/cards", s.handleCreateCard)
	mux.HandleFunc("PATCH /api/cards/{id}", s.handleUpdateCard)
	mux.HandleFunc("DELETE /api/cards/{id}", s.handleDeleteCard)
	mux.HandleFunc("GET /api/cards/{id}/metrics", s.handleCardMetrics)

	mux.HandleFunc("GET /api/draft", s.handleGetDraft)
	mux.HandleFunc("PATCH /api/draft", s.handleUpdateDraft)
	mux.HandleFunc("POST /api/draft/suggest", s.handleSuggest)

	mux.HandleFunc("GET /api/entries", s.handleListEntries)
	mux.HandleFunc("POST /api/entries", s.handleSaveEntry)
	mux.HandleFunc("POST /api/entries/cancel", s.handleCancelEdit)
	mux.HandleFunc("POST /api/entries/{id}/edit", s.handleStartEdit)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDeleteEntry)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
}

// DashboardCache exposes the cache so it can be registered for cleanup.
func (s *Server) DashboardCache() *cache.DashboardCache {
	return s.dashboard
}

// Shutdown stops background work and gracefully shuts down the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, please try again later"})
}
