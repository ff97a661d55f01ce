package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HTTPDeps is the ambient wiring shared by every service handler.
type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// NewRouter returns a chi router with request ids, panic recovery, request
// logging and, when a registry is given, HTTP metrics and a guarded /metrics.
// Callers add their routes on top.
func NewRouter(deps HTTPDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Recoverer)
	if deps.Log != nil {
		r.Use(Logging(deps.Log))
	}

	if deps.Registry == nil {
		return r
	}

	r.Use(NewMetrics(deps.Registry, deps.Service).Middleware(ChiRoutePatternOrPath))
	if deps.MetricsEnabled {
		r.With(MetricsAuth(deps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
