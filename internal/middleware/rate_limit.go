package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/leadintake/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig is a per-IP request budget for one route group
type RateLimitConfig struct {
	RequestsPerMinute int
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// This sits in front of the per-email submission limit, it doesn't replace it.
//
// The key is RemoteAddr, which RealIP has already resolved against the
// trusted proxy list. Reading forwarding headers here would let a client
// pick a fresh bucket per request.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyByIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again later.")
		}),
	)
}
