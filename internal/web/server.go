// Package web provides the HTTP boundary for the check-in service.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doorlist/doorlist/internal/checkin"
	"github.com/doorlist/doorlist/internal/config"
	"github.com/doorlist/doorlist/internal/guest"
	"github.com/doorlist/doorlist/internal/importer"
	"github.com/doorlist/doorlist/internal/store"
	webmw "github.com/doorlist/doorlist/internal/web/middleware"
)

// GuestReader is the read side of the guest store, used by the list,
// lookup, stats, and export handlers.
type GuestReader interface {
	FindByCode(ctx context.Context, code string) (*guest.Guest, error)
	ListGuests(ctx context.Context) ([]*guest.Guest, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Server is the HTTP server for the check-in application.
type Server struct {
	checkin  *checkin.Service
	importer *importer.Service
	guests   GuestReader
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires handlers to services and configures the middleware
// stack and routes.
func NewServer(checkinSvc *checkin.Service, importSvc *importer.Service, guests GuestReader, cfg *config.Config) *Server {
	s := &Server{
		checkin:  checkinSvc,
		importer: importSvc,
		guests:   guests,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Post("/check-in", s.handleCheckIn)

	s.router.Group(func(r chi.Router) {
		// Imports are heavyweight; they get a stricter per-IP bucket on
		// top of the global limit.
		if s.cfg.Rate.Enabled {
			r.Use(newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute).middleware)
		}
		r.Post("/import", s.handleImport)
	})

	s.router.Get("/guests", s.handleListGuests)
	s.router.Get("/guests/{uniqueId}", s.handleGetGuest)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/export/excel", s.handleExportExcel)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders hardens every response. The service serves JSON and
// file downloads only, so the policy is strict.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a token bucket per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup drops stale visitor entries so the map stays bounded.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists || time.Since(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
