package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimit applies a fixed-window limit per caller and path, counted in
// Redis so the limit holds across instances. Authenticated callers are keyed
// by user id, anonymous ones by client IP. Redis errors fail open; limiting
// is protection, not a feature users should see break.
func RateLimit(client *redis.Client, limit int, window time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := UserIDFromContext(r.Context())
			if caller == "" {
				caller = clientIPForRateLimit(r)
			}
			key := fmt.Sprintf("ratelimit:%s:%s", caller, r.URL.Path)

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				logger.Warn().Err(err).Msg("rate limit counter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(r.Context(), key, window)
			}
			if count > int64(limit) {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
