package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/listingz-backend/api/controllers"
	"github.com/angelmondragon/listingz-backend/api/middleware"
	"github.com/angelmondragon/listingz-backend/internal/accounts"
	"github.com/angelmondragon/listingz-backend/internal/auth"
	"github.com/angelmondragon/listingz-backend/pkg/auth/session"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
	"github.com/angelmondragon/listingz-backend/pkg/redis"
)

// IdentityDeps are the collaborators served by identity-api.
type IdentityDeps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Auth        auth.Service
	Register    auth.RegisterService
	Password    auth.PasswordService
	Accounts    accounts.Service
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewIdentityRouter(d IdentityDeps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := baseRouter(cfg, logg, d.Gatherer, d.HTTPMetrics,
		controllers.ReadinessCheck{Name: "db", Pinger: d.DB},
		redisCheck(d.Redis),
	)

	policies := middleware.NewAuthRateLimitPolicies(cfg.AuthRateLimit)
	authn := middleware.Auth(cfg.JWT, d.Sessions, logg)
	idem := middleware.Idempotency(idempotencyStore(d.Redis), logg)
	throttle := middleware.RateLimit(cfg.RateLimit, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(throttle)
		r.With(rateLimited(policies.Login, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(rateLimited(policies.Register, d.Redis, logg), idem).Post("/register", controllers.AuthRegister(d.Register, logg))
		r.With(rateLimited(policies.Forgot, d.Redis, logg)).Post("/forgot-password", controllers.AuthForgotPassword(d.Password, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, cfg.JWT, logg))
		// the emailed link is followed with GET
		r.Get("/confirm-email", controllers.AuthConfirmEmail(d.Register, logg))
		r.Post("/confirm-email", controllers.AuthConfirmEmail(d.Register, logg))
		r.Get("/reset-password/validate", controllers.AuthValidateResetToken(d.Password, logg))

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Post("/reset-password", controllers.AuthResetPassword(d.Password, logg))
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(authn, throttle)
		r.With(middleware.RequireRole(enums.AccountRoleAdmin, logg)).Get("/", controllers.UserList(d.Accounts, logg))
		r.Get("/{id}", controllers.UserGet(d.Accounts, logg))
		r.Put("/{id}", controllers.UserUpdate(d.Accounts, logg))
		r.Delete("/{id}", controllers.UserDeleteSelf(d.Accounts, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authn, middleware.RequireRole(enums.AccountRoleAdmin, logg), throttle)
		r.With(idem).Post("/change-user-status", controllers.AdminChangeUserStatus(d.Accounts, logg))
	})

	return r
}

// rateLimited skips the redis-backed auth limiter when redis is not configured.
func rateLimited(policy middleware.AuthRateLimitPolicy, client *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if client == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, client, logg)
}
