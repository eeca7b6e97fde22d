package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"mybalance/internal/balance"
	"mybalance/internal/cache"
	"mybalance/internal/core"
	"mybalance/internal/ledger"
	"mybalance/internal/log"
	"mybalance/internal/middleware/ratelimit"
	"mybalance/internal/middleware/security"
	"mybalance/internal/middleware/trace"
	"mybalance/internal/services"
)

const (
	historyCacheKey = "history"
	currentCacheKey = "current"
)

// Options configures the HTTP server.
type Options struct {
	Addr              string
	RequestsPerMinute int
	AllowedOrigin     string
	// RequestTimeout bounds store calls made while serving one request.
	RequestTimeout time.Duration
	// CacheTTL bounds how stale a cached balance read can be when another
	// process, such as cmd/recalculate, rewrites the history.
	CacheTTL time.Duration
	// TrustedProxies are CIDRs, beyond the private ranges, whose
	// forwarding headers identify the client.
	TrustedProxies []string
	Logger         *log.Logger
}

// Server serves the ledger and balance JSON API.
type Server struct {
	http.Server

	store        ledger.Store
	engine       *balance.Engine
	notifier     services.Notifier
	transactions *services.TransactionService
	categories   *services.CategoryService

	// Derived reads are cached until the next ledger mutation
	historyCache *cache.LRUCache[[]core.BalanceRecord]
	currentCache *cache.LRUCache[core.BalanceRecord]
	cacheManager *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	logger         *log.Logger
	requestTimeout time.Duration
	startTime      time.Time
	shutdownOnce   sync.Once
}

// NewServer wires services, caches and middleware around store and
// returns a ready-to-run server. notifier may be nil.
func NewServer(opts Options, store ledger.Store, engine *balance.Engine, notifier services.Notifier) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	s := &Server{
		store:            store,
		engine:           engine,
		notifier:         notifier,
		historyCache:     cache.NewLRUCache[[]core.BalanceRecord](1, opts.CacheTTL),
		currentCache:     cache.NewLRUCache[core.BalanceRecord](1, opts.CacheTTL),
		cacheManager:     cache.NewManager(),
		securityDetector: security.NewDetector(),
		logger:           logger.WithComponent(log.ComponentHTTP),
		requestTimeout:   opts.RequestTimeout,
		startTime:        time.Now(),
	}
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RequestsPerMinute,
		CleanupInterval:   5 * time.Minute,
	})
	for _, cidr := range opts.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	s.transactions = services.NewTransactionService(store, engine, notifier, s.historyCache, s.currentCache)
	s.categories = services.NewCategoryService(store)

	s.cacheManager.Register(historyCacheKey, s.historyCache)
	s.cacheManager.Register(currentCacheKey, s.currentCache)
	s.cacheManager.StartCleanup(time.Minute)

	headersConfig := security.DefaultHeadersConfig()
	headersConfig.AllowedOrigin = opts.AllowedOrigin
	headers := security.NewHeadersMiddleware(headersConfig)

	limit := s.rateLimiter.Middleware(
		s.securityDetector.ExtractClientIP,
		ratelimit.MutatingOnly,
		func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			TooManyRequestsError().Write(w)
		})

	var handler http.Handler = s.routes()
	handler = limit(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = trace.Recover(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /balance/{$}", s.handleBalanceHistory)
	mux.HandleFunc("GET /balance/current", s.handleCurrentBalance)
	mux.HandleFunc("POST /balance/recalculate", s.handleRecalculate)
	mux.HandleFunc("POST /balance/{$}", s.handleUpsertBalance)

	mux.HandleFunc("GET /transaction/{$}", s.handleListTransactions)
	mux.HandleFunc("GET /transaction/search", s.handleSearchTransactions)
	mux.HandleFunc("GET /transaction/{id}", s.handleGetTransaction)
	mux.HandleFunc("POST /transaction/{$}", s.handleCreateTransaction)
	mux.HandleFunc("PUT /transaction/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transaction/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /category/{$}", s.handleListCategories)
	mux.HandleFunc("POST /category/{$}", s.handleCreateCategory)
	mux.HandleFunc("GET /category/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /category/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /category/{id}", s.handleDeleteCategory)

	return mux
}

// withTimeout derives the context used for store calls.
func (s *Server) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// Transactions exposes the service so startup code can run the initial
// recompute through the same cache and notification path.
func (s *Server) Transactions() *services.TransactionService {
	return s.transactions
}

// invalidateCaches drops every cached derived read.
func (s *Server) invalidateCaches() {
	s.historyCache.Invalidate()
	s.currentCache.Invalidate()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
