package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/merkur-erp/erp-api/internal/auth"
	"github.com/merkur-erp/erp-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter throttles requests per client. Unauthenticated traffic is
// keyed by IP; authenticated traffic gets its own higher per-user budget.
// Whitelisted IPs and paths bypass the limiter entirely.
type RateLimiter struct {
	cfg    *config.RateLimitConfig
	logger *zap.Logger

	byIP   func(http.Handler) http.Handler
	byUser func(http.Handler) http.Handler

	skipIPs   map[string]bool
	skipPaths map[string]bool
}

func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:       cfg,
		logger:    logger,
		skipIPs:   make(map[string]bool, len(cfg.WhitelistIPs)),
		skipPaths: make(map[string]bool, len(cfg.WhitelistPaths)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.skipIPs[ip] = true
	}
	for _, path := range cfg.WhitelistPaths {
		rl.skipPaths[path] = true
	}

	rl.byIP = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)
	rl.byUser = httprate.Limit(
		cfg.RequestsPerMinuteAuth,
		time.Minute,
		httprate.WithKeyFuncs(rl.keyByUserOrIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)

	logger.Info("rate limiter initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requestsPerMinute", cfg.RequestsPerMinute),
		zap.Int("requestsPerMinuteAuth", cfg.RequestsPerMinuteAuth),
	)
	return rl
}

// Limit applies the per-user budget when the request carries an
// authenticated user, the per-IP budget otherwise.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx != nil {
			rl.byUser(next).ServeHTTP(w, r)
			return
		}
		rl.byIP(next).ServeHTTP(w, r)
	})
}

// LimitByIP applies the per-IP budget. Meant for use ahead of the auth
// middleware, where no user identity exists yet.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		rl.byIP(next).ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	return rl.pathWhitelisted(r.URL.Path) || rl.skipIPs[clientIP(r)]
}

func (rl *RateLimiter) keyByUserOrIP(r *http.Request) (string, error) {
	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx != nil {
		return "user:" + userCtx.UserID.String(), nil
	}
	return "ip:" + clientIP(r), nil
}

// pathWhitelisted matches whitelist entries exactly, or by prefix when the
// entry ends in "/*".
func (rl *RateLimiter) pathWhitelisted(path string) bool {
	if rl.skipPaths[path] {
		return true
	}
	for entry := range rl.skipPaths {
		if strings.HasSuffix(entry, "/*") && strings.HasPrefix(path, strings.TrimSuffix(entry, "/*")) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) limitExceeded(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx != nil {
		userID = userCtx.UserID.String()
	}
	rl.logger.Warn("rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", clientIP(r)),
		zap.String("user_id", userID),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded","message":"Too many requests. Please try again later."}`))
}

// clientIP resolves the originating address, honoring the usual proxy
// headers before falling back to the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
