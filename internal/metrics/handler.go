package metrics

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p7g/wealthsimple-prometheus/internal/middleware"
)

// Path is the only path the exporter serves; everything else is 404.
const Path = "/metrics"

// NewHandler returns the HTTP handler for the metrics endpoint. Gather or
// encoding failures are logged and answered with a 500.
func NewHandler(registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.LimitScrape)

	r.Method(http.MethodGet, Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return r
}
