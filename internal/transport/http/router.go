// Package httptransport assembles the service's HTTP router.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finrisk/internal/applicant/handler"
	"finrisk/internal/platform/middleware"
)

// New wires all public endpoints. Correlation IDs, panic recovery, and
// request logging wrap every route; Prometheus metrics are served on
// /metrics from the default registry.
func New(h *handler.Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))

	h.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
