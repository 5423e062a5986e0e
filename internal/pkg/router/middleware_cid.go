package router

import (
	"net/http"
	"strings"

	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is the canonical correlation header. HeaderRequestID
	// is accepted as a fallback for proxies that set it instead.
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderRequestID     = "X-Request-ID"

	// maxCorrelationIDLen caps caller-supplied correlation values.
	maxCorrelationIDLen = 128
)

// sanitizeCorrelationID trims and bounds a caller-supplied correlation value.
// Values containing CR or LF are rejected outright.
func sanitizeCorrelationID(v string) string {
	if strings.ContainsAny(v, "\r\n") {
		return ""
	}
	v = strings.TrimSpace(v)
	if len(v) > maxCorrelationIDLen {
		v = v[:maxCorrelationIDLen]
	}
	return v
}

func middlewareCorrelationID(uid uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cid string
			for _, header := range []string{HeaderCorrelationID, HeaderRequestID} {
				if cid = sanitizeCorrelationID(r.Header.Get(header)); cid != "" {
					break
				}
			}
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
