package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/companyhub/companyhub/internal/metrics"
	"github.com/companyhub/companyhub/internal/ratelimit"
)

// Decider is the part of ratelimit.Limiter the middleware needs.
type Decider interface {
	Decide(ctx context.Context, req ratelimit.Request) (ratelimit.Decision, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter Decider
	Metrics metrics.Recorder
	Enabled bool
}

// RateLimit returns middleware that throttles the company list, update and
// delete endpoints per client IP. It runs ahead of authentication so a
// blocked request never reaches token verification or the database.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			decision, err := cfg.Limiter.Decide(r.Context(), ratelimit.Request{
				IP:     ip,
				Method: r.Method,
				Path:   r.URL.Path,
			})
			if !decision.Match.Counted() {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("ip", ip),
					slog.String("match", decision.Match.String()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncRateLimitDecision(decision.Match.String(), metrics.ResultError)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, decision)

			if !decision.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("match", decision.Match.String()),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("count", decision.Count),
					slog.Int64("retry_after_seconds", int64(decision.RetryAfter/time.Second)),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncRateLimitDecision(decision.Match.String(), metrics.ResultBlocked)

				w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter/time.Second)))
				writeRateLimitError(w, decision.RetryAfter)
				return
			}

			recorder.IncRateLimitDecision(decision.Match.String(), metrics.ResultAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	msg := fmt.Sprintf(`{"error":{"code":"RATE_LIMITED","message":"Rate limit exceeded. Retry after %d seconds."}}`,
		int(retryAfter/time.Second))
	_, _ = w.Write([]byte(msg))
}

// getClientIP returns the host part of RemoteAddr. Proxy headers are
// honoured only through the RealIP middleware, which rewrites RemoteAddr
// for trusted proxies.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
