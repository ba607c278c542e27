package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/carlosvigna/finhawk-bff/internal/domain"
	"github.com/carlosvigna/finhawk-bff/internal/infra/observability"
	"github.com/carlosvigna/finhawk-bff/internal/port"
	"github.com/carlosvigna/finhawk-bff/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

const healthProbeTimeout = 2 * time.Second

// NewRouter creates the HTTP router with all routes and middleware.
// prober may be nil, in which case /healthz only reports the BFF itself.
func NewRouter(
	svc *service.DashboardService,
	prober port.HealthProber,
	verifier *service.TokenVerifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.CorrelationMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(prober))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/bff", bffMetricsHandler(metrics))

		r.Group(func(r chi.Router) {
			r.Use(BearerTokenMiddleware(verifier, logger))

			r.Route("/accounts/{accountId}/dashboard", func(r chi.Router) {
				r.Get("/", dashboardHandler(svc, logger))
				r.Get("/summary", summaryHandler(svc, logger))
				r.Get("/categories", categoriesHandler(svc, logger))
				r.Get("/due", dueHandler(svc, logger))
				r.Get("/timeline", timelineHandler(svc, logger))
				r.Get("/annual", annualHandler(svc, logger))
			})
		})
	})

	return r
}

func healthzHandler(prober port.HealthProber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "finhawk-bff", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if prober != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
			defer cancel()

			start := time.Now()
			err := prober.Ping(ctx)
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "finhawk-api", Status: status, LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func bffMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
