package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"schoolsite/internal/cache"
	"schoolsite/internal/core"
	applog "schoolsite/internal/log"
	"schoolsite/internal/middleware/ratelimit"
	"schoolsite/internal/middleware/security"
	"schoolsite/internal/middleware/trace"
	"schoolsite/internal/ports"
	"schoolsite/internal/services"
)

const feeListKey = "fees:all"

// Options tunes the server. Zero values select defaults.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	CacheTTL           time.Duration
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	fees      *services.FeeService
	directory *services.DirectoryService
	pinger    ports.Pinger
	logger    *applog.Logger

	feeCache *cache.LRU[[]core.FeeRecord]
	janitor  *cache.Janitor
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	metrics  appMetrics

	stopBackground context.CancelFunc
	shutdownOnce   sync.Once
}

type appMetrics struct {
	started     time.Time
	feesCreated atomic.Int64
	feesUpdated atomic.Int64
	feesDeleted atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// NewServer wires routes and middleware and starts the cache janitor. Call
// Shutdown to stop it.
func NewServer(opts Options, fees *services.FeeService, directory *services.DirectoryService, pinger ports.Pinger) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 2 * time.Minute
	}

	s := &Server{
		fees:      fees,
		directory: directory,
		pinger:    pinger,
		logger:    opts.Logger.WithComponent(applog.ComponentHTTP),
		feeCache:  cache.NewLRU[[]core.FeeRecord](8, opts.CacheTTL),
		janitor:   cache.NewJanitor(opts.Logger),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:  security.NewDetector(),
	}
	s.metrics.started = time.Now()
	s.tracer = trace.New(s.detector.ClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ClientIP, s.onRateLimit)(h)
	h = s.flagProbes(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.tracer.Handler(h)
	h = applog.Middleware(s.logger)(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopBackground = cancel
	s.janitor.Register(s.feeCache)
	go s.janitor.Run(ctx, opts.CacheTTL)

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/fees", s.handleListFees)
	mux.HandleFunc("POST /api/fees", s.handleCreateFee)
	mux.HandleFunc("GET /api/fees/summary", s.handleFeeSummary)
	mux.HandleFunc("GET /api/fees/{id}", s.handleGetFee)
	mux.HandleFunc("PUT /api/fees/{id}", s.handleUpdateFee)
	mux.HandleFunc("DELETE /api/fees/{id}", s.handleDeleteFee)
	mux.HandleFunc("GET /api/categories", s.handleCategories)

	mux.HandleFunc("GET /api/alumni", s.handleListAlumni)
	mux.HandleFunc("POST /api/alumni", s.handleCreateAlumnus)
	mux.HandleFunc("DELETE /api/alumni/{id}", s.handleDeleteAlumnus)

	mux.HandleFunc("GET /api/gallery", s.handleGallery)
	mux.HandleFunc("POST /api/gallery", s.handleCreateGalleryImage)
	mux.HandleFunc("DELETE /api/gallery/{id}", s.handleDeleteGalleryImage)
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.stopBackground()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.NewFields().Component(applog.ComponentRateLimit).
			ClientIP(s.detector.ClientIP(r)).
			Request(r.Method, r.URL.Path, r.URL.RawQuery).Args()...)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// flagProbes logs requests that look like scanners. They are still served.
func (s *Server) flagProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.Suspicious(r) {
			fields := applog.NewFields().ClientIP(s.detector.ClientIP(r)).
				Request(r.Method, r.URL.Path, r.URL.RawQuery)
			fields = append(fields, applog.FieldUserAgent, r.UserAgent())
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request", fields...)
		}
		next.ServeHTTP(w, r)
	})
}

// loadFees returns the computed fee list through the cache.
func (s *Server) loadFees(ctx context.Context) ([]core.FeeRecord, error) {
	if records, ok := s.feeCache.Get(feeListKey); ok {
		s.metrics.cacheHits.Add(1)
		return records, nil
	}
	s.metrics.cacheMisses.Add(1)
	return s.feeCache.GetOrLoad(ctx, feeListKey, s.fees.List)
}

func (s *Server) invalidateFees() {
	s.feeCache.Purge()
}
