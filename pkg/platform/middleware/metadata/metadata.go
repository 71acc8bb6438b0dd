// Package metadata resolves the client address of an HTTP request and stores
// it in the request context for the rate limiter and request logs.
package metadata

import (
	"net"
	"net/http"
	"strings"

	"todolists/pkg/requestcontext"
)

// ClientMetadata stores the client IP in the context. Apply it before any
// middleware that keys on the client.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), ClientIPFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest returns the originating client address. Forwarding
// headers are honored only when the peer is a loopback or private address,
// such as a local reverse proxy: the first X-Forwarded-For entry wins, then
// X-Real-IP. Otherwise the peer address without its port is used.
func ClientIPFromRequest(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !trustedProxy(peer) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func remoteHost(addr string) string {
	if addr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func trustedProxy(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}
