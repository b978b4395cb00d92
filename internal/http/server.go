// Package http bridges the operation contracts to a JSON API. It owns no
// business logic: handlers decode, call the service, and render the result
// or a structured error.
package http

import (
	"net/http"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/services"
)

const (
	authCacheSize = 256
	authCacheTTL  = 30 * time.Second
)

// Server wires the routes to the tracker service.
type Server struct {
	svc     *services.TrackerService
	users   *cache.LRU[*core.User]
	limiter *ratelimit.Limiter
}

// NewServer returns a configured *http.Server listening on addr.
func NewServer(addr string, svc *services.TrackerService) *http.Server {
	s := &Server{
		svc:     svc,
		users:   cache.NewLRU[*core.User](authCacheSize, authCacheTTL),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Registration is the one unauthenticated API call.
	mux.HandleFunc("POST /api/users", s.handleCreateUser)

	auth := func(h http.HandlerFunc) http.Handler { return s.requireUser(h) }
	mux.Handle("GET /api/users", auth(s.handleListUsers))

	mux.Handle("POST /api/expenses", auth(s.handleAddExpense))
	mux.Handle("GET /api/expenses", auth(s.handleListExpenses))
	mux.Handle("GET /api/expenses/top", auth(s.handleTopExpenses))
	mux.Handle("GET /api/expenses/{id}", auth(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", auth(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", auth(s.handleDeleteExpense))

	mux.Handle("GET /api/summary", auth(s.handleSummary))
	mux.Handle("GET /api/categories", auth(s.handleCategories))

	mux.Handle("PUT /api/budgets", auth(s.handleSetBudget))
	mux.Handle("GET /api/budgets/status", auth(s.handleBudgetStatus))

	return &http.Server{
		Addr:           addr,
		Handler:        withRequestID(withLogging(s.withRateLimit(mux))),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}
