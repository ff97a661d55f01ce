package gateway

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"RocketShoes/internal/session"
	"RocketShoes/pkg/kit"
)

type ctxKey string

const sessionIDKey ctxKey = "session_id"

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}

// AuthJWT admits requests with a valid session token and remembers the
// session id for InjectHeaders.
func AuthJWT(jwt *session.TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}
			claims, err := jwt.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectHeaders replaces any client-supplied session header with the verified one.
func InjectHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(kit.SessionHeader)
		r.Header.Del("Authorization")

		if sid, ok := SessionIDFromContext(r.Context()); ok && sid != "" {
			r.Header.Set(kit.SessionHeader, sid)
		}

		next.ServeHTTP(w, r)
	})
}

func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if log != nil {
			log.Warn("upstream failed", zap.String("upstream", u.Host), zap.String("path", r.URL.Path), zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
	}
	return p, nil
}
