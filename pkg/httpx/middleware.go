package httpx

import (
	"net"
	"net/http"
	"strings"
)

// Middleware wraps an http.Handler with pre/post-processing.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in declaration order: the first middleware
// listed is the outermost and runs first on the way in.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// BearerCredential extracts the bearer credential from a request, checking
// the Authorization header first and falling back to the legacy
// ?access_token= query parameter.
func BearerCredential(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		if strings.HasPrefix(authz, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

// GetRemoteIP returns the originating client IP, honouring proxy headers.
func GetRemoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
