package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"go-media-backend/internal/logger"
)

const rateWindow = time.Minute

// limitStore counts hits per key within the current window.
type limitStore interface {
	Allow(ctx context.Context, key string, perMinute int) (bool, error)
}

// RateLimitMiddleware limits requests per client IP. Session endpoints
// (/auth) have their own, tighter budget. A negative RPM disables a bucket.
type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int
	store      limitStore
}

func NewRateLimitMiddleware(generalRPM int, authRPM int) *RateLimitMiddleware {
	return newRateLimitMiddleware(generalRPM, authRPM, newMemoryLimitStore())
}

// NewRedisRateLimitMiddleware shares the counters between instances through
// a fixed window in Redis.
func NewRedisRateLimitMiddleware(client *redis.Client, generalRPM int, authRPM int) *RateLimitMiddleware {
	return newRateLimitMiddleware(generalRPM, authRPM, &redisLimitStore{client: client, prefix: "ratelimit:"})
}

func newRateLimitMiddleware(generalRPM int, authRPM int, store limitStore) *RateLimitMiddleware {
	if generalRPM == 0 {
		generalRPM = 100
	}
	if authRPM == 0 {
		authRPM = 10
	}

	return &RateLimitMiddleware{generalRPM: generalRPM, authRPM: authRPM, store: store}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket, limit := "general", m.generalRPM
		if strings.HasPrefix(strings.ToLower(r.URL.Path), "/api/v1/auth") {
			bucket, limit = "auth", m.authRPM
		}
		if limit < 0 {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := m.store.Allow(r.Context(), bucket+":"+clientIP(r), limit)
		if err != nil {
			// A limiter outage lets requests through.
			logger.FromContext(r.Context()).Warn("rate limiter unavailable", slog.String("error", err.Error()))
			allowed = true
		}

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
			writeFailure(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

type memoryLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// memoryLimitStore keeps a token bucket per key in process.
type memoryLimitStore struct {
	mu      sync.Mutex
	clients map[string]*memoryLimiter
	now     func() time.Time
}

func newMemoryLimitStore() *memoryLimitStore {
	return &memoryLimitStore{clients: map[string]*memoryLimiter{}, now: time.Now}
}

func (s *memoryLimitStore) Allow(_ context.Context, key string, perMinute int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, exists := s.clients[key]
	if !exists {
		entry = &memoryLimiter{limiter: rate.NewLimiter(rate.Every(rateWindow/time.Duration(perMinute)), perMinute)}
		s.clients[key] = entry
	}
	entry.lastSeen = now
	s.gcLocked(now)

	return entry.limiter.AllowN(now, 1), nil
}

func (s *memoryLimitStore) gcLocked(now time.Time) {
	if len(s.clients) < 1000 {
		return
	}

	cutoff := now.Add(-10 * time.Minute)
	for key, entry := range s.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(s.clients, key)
		}
	}
}

// redisLimitStore is a fixed window keyed by the window start.
type redisLimitStore struct {
	client *redis.Client
	prefix string
}

func (s *redisLimitStore) Allow(ctx context.Context, key string, perMinute int) (bool, error) {
	windowStart := time.Now().UTC().Truncate(rateWindow)
	redisKey := fmt.Sprintf("%s%s:%d", s.prefix, key, windowStart.Unix())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rateWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit window: %w", err)
	}

	return incr.Val() <= int64(perMinute), nil
}

// clientIP prefers proxy headers, then the connection address.
func clientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}

// ClientIP is the address the audit trail records.
func ClientIP(r *http.Request) string {
	return clientIP(r)
}
