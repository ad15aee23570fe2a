package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/listingz-backend/api/controllers"
	"github.com/angelmondragon/listingz-backend/api/middleware"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/listingz-backend/pkg/redis"
)

// baseRouter installs the middleware chain and the health endpoints shared by both services.
func baseRouter(cfg *config.Config, logg *logger.Logger, gatherer prometheus.Gatherer, httpMetrics *metrics.HTTPMetrics, checks ...controllers.ReadinessCheck) *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// idempotencyStore keeps a nil *redis.Client from becoming a non-nil interface.
func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func redisCheck(client *pkgredis.Client) controllers.ReadinessCheck {
	check := controllers.ReadinessCheck{Name: "redis"}
	if client != nil {
		check.Pinger = client
	}
	return check
}
