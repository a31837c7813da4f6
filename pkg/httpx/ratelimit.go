package httpx

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rithlabs/rith/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Common rate limit profiles. Each can be overridden via environment
// variables (see init below), which keeps e2e tests from tripping limits.
var (
	// StrictLimit for authentication endpoints (brute force prevention).
	StrictLimit = RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}

	// ModerateLimit for authenticated operations.
	ModerateLimit = RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		Burst:             20,
	}

	// LenientLimit for less sensitive operations.
	LenientLimit = RateLimitConfig{
		RequestsPerWindow: 100,
		Window:            time.Minute,
		Burst:             100,
	}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
}

// ParseRateLimitFromEnv reads rate limit configuration from environment
// variables following the pattern RATELIMIT_{prefix}_{field}, e.g.
// RATELIMIT_STRICT_REQUESTS, RATELIMIT_STRICT_WINDOW_SEC, RATELIMIT_STRICT_BURST.
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// KeyExtractor extracts the grouping key for rate limiting from a request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor groups requests by originating client IP.
func IPKeyExtractor(r *http.Request) string {
	return GetRemoteIP(r)
}

// FormFieldKeyExtractor groups requests by a form field value combined with
// the client IP. Used to slow per-account brute force on login endpoints.
func FormFieldKeyExtractor(fieldName string) KeyExtractor {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return GetRemoteIP(r)
		}
		return GetRemoteIP(r) + ":" + r.FormValue(fieldName)
	}
}

// rateLimiter manages rate limiters for different keys.
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)

	rl.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose token buckets are full again; idle keys
// would otherwise accumulate forever.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		limiter := value.(*rate.Limiter)
		if limiter.Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware creates a rate limiting middleware with the given
// configuration; keyExtractor determines how requests are grouped.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	rl := &rateLimiter{
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:       config.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			limiter := rl.getLimiter(key)
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel() // don't actually consume the reservation

				retryAfter := max(int(delay.Seconds()), 1)

				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", config.Window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limit_exceeded",
					"error_description": "Too many requests. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP creates a rate limiter that limits by IP address only.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByIPAndFormField limits by IP combined with a form field value.
func RateLimitByIPAndFormField(config RateLimitConfig, fieldName string) Middleware {
	return RateLimitMiddleware(config, FormFieldKeyExtractor(fieldName))
}
