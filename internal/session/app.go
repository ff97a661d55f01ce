package session

import (
	"time"

	"github.com/go-chi/chi/v5"

	"RocketShoes/pkg/kit"
)

const (
	issueLimitPerMin = 10
	limitWindow      = 60 * time.Second
)

// Mount registers the session endpoints on r.
func (s *Server) Mount(r chi.Router) {
	issueLimiter := kit.NewIPRateLimiter(issueLimitPerMin, limitWindow)

	r.Route("/session", func(rr chi.Router) {
		rr.With(issueLimiter.Middleware).Post("/", s.handleIssue)
		rr.Get("/whoami", s.handleWhoAmI)
	})
}
