// Package http is the JSON API surface. Handlers are thin: decode, call the
// ledger or a service, encode.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneta/internal/accounts"
	"moneta/internal/auth"
	"moneta/internal/cache"
	"moneta/internal/categories"
	"moneta/internal/ledger"
	"moneta/internal/parser"
	"moneta/internal/stats"
	"moneta/internal/telemetry"
	"moneta/internal/users"
)

type Deps struct {
	Ledger     *ledger.Ledger
	Accounts   *accounts.Service
	Categories *categories.Service
	Users      *users.Service
	Auth       *auth.Service
	Parser     *parser.Parser

	StatsCacheTTL  time.Duration
	StatsCacheSize int
}

type Server struct {
	http.Server

	ledger     *ledger.Ledger
	accounts   *accounts.Service
	categories *categories.Service
	users      *users.Service
	auth       *auth.Service
	parser     *parser.Parser

	rateLimiter *rateLimiter

	// Month buckets are read far more often than written; writes invalidate
	// the affected key, the TTL catches everything else.
	statsCache   *cache.LRUCache[stats.MonthlyStats]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	cacheTTL := deps.StatsCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	cacheSize := deps.StatsCacheSize
	if cacheSize <= 0 {
		cacheSize = 1024
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:       deps.Ledger,
		accounts:     deps.Accounts,
		categories:   deps.Categories,
		users:        deps.Users,
		auth:         deps.Auth,
		parser:       deps.Parser,
		rateLimiter:  newRateLimiter(),
		statsCache:   cache.NewLRUCache[stats.MonthlyStats](cacheSize, cacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.statsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", telemetry.Handler())

	mux.HandleFunc("POST /api/v1/auth/register", s.public(s.handleRegister))
	mux.HandleFunc("POST /api/v1/auth/login", s.public(s.handleLogin))

	mux.HandleFunc("POST /api/v1/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/v1/transactions", s.protected(s.handleRecentTransactions))
	mux.HandleFunc("GET /api/v1/transactions/today", s.protected(s.handleTodayTransactions))
	mux.HandleFunc("GET /api/v1/transactions/breakdown", s.protected(s.handleTransactionBreakdown))
	mux.HandleFunc("POST /api/v1/transactions/parse", s.protected(s.handleParseTransaction))
	mux.HandleFunc("GET /api/v1/transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/v1/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/v1/accounts", s.protected(s.handleListAccounts))
	mux.HandleFunc("POST /api/v1/accounts", s.protected(s.handleCreateAccount))
	mux.HandleFunc("PUT /api/v1/accounts/{id}", s.protected(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/v1/accounts/{id}", s.protected(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/v1/categories", s.protected(s.handleListCategories))
	mux.HandleFunc("POST /api/v1/categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/v1/categories/{id}", s.protected(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/v1/categories/{id}", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/v1/stats", s.protected(s.handleCurrentMonthStats))
	mux.HandleFunc("GET /api/v1/stats/{monthKey}", s.protected(s.handleMonthStats))

	mux.HandleFunc("GET /api/v1/me", s.protected(s.handleGetProfile))
	mux.HandleFunc("PUT /api/v1/me", s.protected(s.handleUpdateProfile))
	mux.HandleFunc("PUT /api/v1/me/settings", s.protected(s.handleUpdateSettings))
	mux.HandleFunc("DELETE /api/v1/me", s.protected(s.handlePurgeUser))

	return s
}

// Shutdown stops the background routines, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
