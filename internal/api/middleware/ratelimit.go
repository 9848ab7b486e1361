package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"loan-ledger/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	redisWindow     = time.Second
	cleanupInterval = 10 * time.Minute
)

// RateLimiterMiddleware limits requests per client IP. The memory backend
// keeps a token bucket per IP in this process; the redis backend counts
// requests in a shared one-second window so that every replica sees the
// same budget.
type RateLimiterMiddleware struct {
	limiters    sync.Map
	redisClient *redis.Client
	cfg         config.RateLimitConfig
	logger      *slog.Logger
	done        chan struct{}
	closeOnce   sync.Once
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, redisClient *redis.Client, logger *slog.Logger) *RateLimiterMiddleware {
	logger = logger.With("component", "RateLimiter")

	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if cfg.Enabled && cfg.Backend == BackendRedis && redisClient == nil {
		logger.Warn("Redis rate limiting requested without a Redis client; using in-memory limiter")
		cfg.Backend = BackendMemory
	}

	rl := &RateLimiterMiddleware{
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger,
		done:        make(chan struct{}),
	}

	if !cfg.Enabled {
		logger.Info("Rate limiting is disabled via configuration.")
		return rl
	}

	logger.Info("Rate limiter configured", "backend", cfg.Backend, "rps", cfg.RPS, "burst", cfg.Burst)
	if cfg.Backend == BackendMemory {
		go rl.cleanupLimiters()
	}
	return rl
}

func (rl *RateLimiterMiddleware) Backend() string {
	return rl.cfg.Backend
}

// Close stops the background cleanup of idle in-memory limiters.
func (rl *RateLimiterMiddleware) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(ip); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst))
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiterMiddleware) cleanupLimiters() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.pruneIdle()
		}
	}
}

// pruneIdle drops limiters whose bucket has refilled, i.e. clients that
// have been quiet for at least burst/rps seconds.
func (rl *RateLimiterMiddleware) pruneIdle() {
	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.cfg.Burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return ip
	}
	return r.RemoteAddr
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)

		var allowed bool
		if rl.cfg.Backend == BackendRedis {
			allowed = rl.allowRedis(r, ip)
		} else {
			allowed = rl.getLimiter(ip).Allow()
		}

		if !allowed {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip, "backend", rl.cfg.Backend)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"code":    "RATE_LIMITED",
					"message": "Rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowRedis fails open: a Redis outage must not take the API down.
func (rl *RateLimiterMiddleware) allowRedis(r *http.Request, ip string) bool {
	ctx := r.Context()
	key := fmt.Sprintf("loan-ledger:ratelimit:%s", ip)

	pipe := rl.redisClient.TxPipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, redisWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		rl.logger.ErrorContext(ctx, "Redis pipeline failed during rate limiting check", "error", err, "ip", ip)
		return true
	}

	limit := int64(rl.cfg.RPS)
	if rl.cfg.Burst > 0 && int64(rl.cfg.Burst) > limit {
		limit = int64(rl.cfg.Burst)
	}
	return incrCmd.Val() <= limit
}
