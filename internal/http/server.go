package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"spendwise/internal/auth"
	"spendwise/internal/cache"
	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
)

// Dependencies are the services the API serves. Ready and Now are optional.
type Dependencies struct {
	Expenses  *services.ExpenseService
	Budgets   *services.BudgetService
	Recurring *services.RecurringService
	Auth      *auth.Service
	Stats     *cache.StatsCache
	Logger    *log.Logger

	RateLimitPerMinute int
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool

	Ready func(ctx context.Context) error
	Now   func() time.Time
}

type Server struct {
	http.Server

	deps     Dependencies
	now      func() time.Time
	started  time.Time
	trace    *trace.Middleware
	detector *security.Detector
	limiter  *ratelimit.Limiter

	expensesCreated atomic.Int64
	shutdownOnce    sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	detector := security.NewDetector()
	s := &Server{
		deps:     deps,
		now:      now,
		started:  now(),
		trace:    trace.NewMiddleware(deps.Logger, detector.ExtractClientIP),
		detector: detector,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{Requests: deps.RateLimitPerMinute, Window: time.Minute}),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, rateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("POST /api/auth/logout", s.requireSession(s.handleLogout))
	mux.Handle("GET /api/auth/session", s.requireSession(s.handleSession))

	mux.Handle("GET /api/expenses", s.requireSession(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.requireSession(s.handleCreateExpense))
	mux.Handle("PATCH /api/expenses/{id}", s.requireSession(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.requireSession(s.handleDeleteExpense))

	mux.Handle("GET /api/stats", s.requireSession(s.handleStats))

	mux.Handle("GET /api/budgets", s.requireSession(s.handleListBudgets))
	mux.Handle("PUT /api/budgets", s.requireSession(s.handleSetBudget))
	mux.Handle("DELETE /api/budgets/{key}", s.requireSession(s.handleDeleteBudget))
	mux.Handle("GET /api/budgets/progress", s.requireSession(s.handleBudgetProgress))

	mux.Handle("GET /api/recurring", s.requireSession(s.handleListRecurring))
	mux.Handle("POST /api/recurring", s.requireSession(s.handleCreateRecurring))
	mux.Handle("PATCH /api/recurring/{id}", s.requireSession(s.handleUpdateRecurring))
	mux.Handle("DELETE /api/recurring/{id}", s.requireSession(s.handleDeleteRecurring))
	mux.Handle("POST /api/recurring/{id}/toggle", s.requireSession(s.handleToggleRecurring))
	mux.Handle("POST /api/recurring/{id}/materialize", s.requireSession(s.handleMaterializeRecurring))

	mux.Handle("GET /api/reports/{type}", s.requireSession(s.handleReport))
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
