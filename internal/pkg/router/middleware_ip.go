package router

import (
	"net"
	"net/http"
	"strings"
)

// proxyIPHeaders are consulted in order for the original client address when
// the service runs behind a load balancer or CDN.
var proxyIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// middlewareIP rewrites RemoteAddr to the client address reported by a
// trusted proxy so per-IP limits and logs see the real caller.
func middlewareIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	for _, header := range proxyIPHeaders {
		v := r.Header.Get(header)
		if header == "X-Forwarded-For" {
			// The left-most entry is the originating client.
			v, _, _ = strings.Cut(v, ",")
		}
		v = strings.TrimSpace(v)
		if net.ParseIP(v) != nil {
			return v
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}
