package api

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"ai-inclusion-checker/internal/observability"
	"ai-inclusion-checker/internal/scan"
	"ai-inclusion-checker/pkg/logger"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 32 << 20
)

type Options struct {
	// RPS and Burst limit scan-creating routes per client address. RPS <= 0
	// disables limiting.
	RPS              float64
	Burst            int
	BatchConcurrency int
	MaxBatch         int
}

func (o *Options) defaults() {
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.BatchConcurrency <= 0 {
		o.BatchConcurrency = 4
	}
	if o.MaxBatch <= 0 {
		o.MaxBatch = 50
	}
}

type Handler struct {
	svc     *scan.Service
	metrics *observability.Metrics
	logger  logger.Logger
	opts    Options
}

func NewHandler(svc *scan.Service, metrics *observability.Metrics, log logger.Logger, opts Options) *Handler {
	opts.defaults()
	return &Handler{
		svc:     svc,
		metrics: metrics,
		logger:  log.With(map[string]interface{}{"component": "api"}),
		opts:    opts,
	}
}

// Router wires the scan routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequest(h.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api/scan", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/result", h.result)

		r.Group(func(r chi.Router) {
			if h.opts.RPS > 0 {
				r.Use(rateLimit(newClientLimiters(h.opts.RPS, h.opts.Burst)))
			}
			r.Post("/", h.runSync)
			r.Post("/request", h.request)
			r.Post("/batch", h.batch)
		})
	})
	return r
}

// clientLimiters hands out one token bucket per remote host. Buckets idle
// for longer than idleTTL are evicted once the map grows past maxClients.
type clientLimiters struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	clients map[string]*clientLimiter
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const maxClients = 1024

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		clients: map[string]*clientLimiter{},
		now:     time.Now,
	}
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	cl, ok := c.clients[key]
	if !ok {
		if len(c.clients) >= maxClients {
			for k, v := range c.clients {
				if now.Sub(v.lastSeen) > c.idleTTL {
					delete(c.clients, k)
				}
			}
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func rateLimit(l *clientLimiters) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientKey(r)) {
				writeJSON(w, http.StatusTooManyRequests, errorBody("rate limit exceeded, try again shortly"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func logRequest(l logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			l.Info("request", map[string]interface{}{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    ww.Status(),
				"bytes":     ww.BytesWritten(),
				"duration":  time.Since(start).String(),
				"requestId": middleware.GetReqID(r.Context()),
			})
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
