package web

import (
	"net/http"

	"github.com/JonMunkholm/ledger/internal/core"
)

// clientMetadata adds the client IP and User-Agent to the request context
// for audit logging. It runs after TrustedRealIP so RemoteAddr is already
// the real client.
func clientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
