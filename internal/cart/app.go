package cart

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

const (
	readyTimeout = 1 * time.Second

	mutationsPerMin = 120
	limitWindow     = 60 * time.Second
)

type HTTPDeps = kit.HTTPDeps

// NewHandler serves the cart API. Every /cart route needs the session header;
// mutations are additionally rate limited per session.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := kit.NewRouter(deps)
	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.ready)

	limiter := kit.NewRateLimiter(mutationsPerMin, limitWindow, kit.SessionOrIP)

	r.Route("/cart", func(cr chi.Router) {
		cr.Use(RequireSessionHeader)
		cr.Get("/", s.GetHandler())
		cr.Get("/notifications", s.NotificationsHandler())

		cr.Group(func(mr chi.Router) {
			mr.Use(limiter.Middleware)
			mr.Post("/items/{productID}", s.AddHandler())
			mr.Put("/items/{productID}", s.UpdateHandler())
			mr.Delete("/items/{productID}", s.RemoveHandler())
		})
	})

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Sessions.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}
