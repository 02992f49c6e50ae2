package web

import (
	"net"
	"net/http"
	"strings"

	"github.com/JonMunkholm/outreach/internal/core"
	"github.com/JonMunkholm/outreach/internal/logging"
)

// UserUIDHeader carries the campaign owner when the query has no user_uid.
const UserUIDHeader = "X-User-UID"

// requestContext stores the client IP and campaign user on the request
// context for the service, the rate limiter and request logs. It must run
// after TrustedRealIP so RemoteAddr is already the client.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ip := clientIP(r.RemoteAddr)
		ctx = core.ContextWithClientIP(ctx, ip)

		uid := strings.TrimSpace(r.URL.Query().Get("user_uid"))
		if uid == "" {
			uid = strings.TrimSpace(r.Header.Get(UserUIDHeader))
		}
		if uid != "" {
			ctx = core.ContextWithUserUID(ctx, uid)
			ctx = logging.WithContext(ctx, "user_uid", uid)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
