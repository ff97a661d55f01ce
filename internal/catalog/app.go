package catalog

import (
	"net/http"

	"RocketShoes/pkg/kit"
)

type HTTPDeps = kit.HTTPDeps

// NewHandler serves the catalog API behind the shared service middleware.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := kit.NewRouter(deps)
	r.Mount("/", s.Routes())
	return r
}
