package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/listingz-backend/api/controllers"
	"github.com/angelmondragon/listingz-backend/api/middleware"
	product "github.com/angelmondragon/listingz-backend/internal/products"
	"github.com/angelmondragon/listingz-backend/pkg/auth/session"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
	"github.com/angelmondragon/listingz-backend/pkg/redis"
)

// ListingsDeps are the collaborators served by listings-api.
type ListingsDeps struct {
	Config *config.Config
	Logger *logger.Logger
	DB     db.Pinger
	Redis  *redis.Client
	// Sessions is nil when redis is not configured; tokens are then checked
	// by signature only.
	Sessions    session.AccessSessionChecker
	Products    product.Service
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

// NewListingsRouter serves products. Access tokens are checked against the
// session store shared with identity-api when one is configured.
func NewListingsRouter(d ListingsDeps) http.Handler {
	cfg, logg := d.Config, d.Logger
	checks := []controllers.ReadinessCheck{{Name: "db", Pinger: d.DB}}
	if d.Redis != nil {
		checks = append(checks, redisCheck(d.Redis))
	}
	r := baseRouter(cfg, logg, d.Gatherer, d.HTTPMetrics, checks...)

	idem := middleware.Idempotency(idempotencyStore(d.Redis), logg)
	throttle := middleware.RateLimit(cfg.RateLimit, logg)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg), throttle)
		r.Get("/", controllers.ProductQuery(d.Products, logg))
		r.Get("/mine", controllers.ProductListMine(d.Products, logg))
		r.Get("/{id}", controllers.ProductGet(d.Products, logg))
		r.With(idem).Post("/", controllers.ProductCreate(d.Products, logg))
		r.Put("/{id}", controllers.ProductUpdate(d.Products, logg))
		r.Delete("/{id}", controllers.ProductDelete(d.Products, logg))
	})

	r.Route("/internal/v1/products", func(r chi.Router) {
		r.Use(middleware.ServiceAuth(cfg.ServiceAuth.Token, logg), throttle)
		r.With(idem).Post("/owner-status", controllers.ProductOwnerStatus(d.Products, logg))
	})

	return r
}
