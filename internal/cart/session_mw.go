package cart

import (
	"context"
	"net/http"
	"strings"

	"RocketShoes/pkg/kit"
)

type ctxKey string

const sessionKey ctxKey = "session_id"

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKey).(string)
	return v, ok && v != ""
}

// RequireSessionHeader admits requests carrying the session id the gateway
// injects after verifying the session token.
func RequireSessionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(kit.SessionHeader))
		if sid == "" {
			kit.WriteError(w, r, http.StatusUnauthorized, "missing session", nil)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
