package middleware

import (
	"net/http"

	pkghttp "github.com/BradenHooton/leadintake/pkg/http"
)

// RealIP rewrites RemoteAddr to the client address, honoring forwarding
// headers only from trusted proxies. Everything after it (per-IP throttle,
// request log, login audit) reads RemoteAddr.
func RealIP(config *pkghttp.IPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.RemoteAddr = pkghttp.ExtractClientIP(r, config)
			next.ServeHTTP(w, r)
		})
	}
}
