package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/angelmondragon/listingz-backend/api/responses"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
)

// ServiceTokenHeader carries the shared secret on peer-to-peer calls.
const ServiceTokenHeader = "X-Service-Token"

// ServiceAuth guards internal routes with a shared secret. An empty token
// leaves the route open.
func ServiceAuth(token string, logg *logger.Logger) func(http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(token))
	return func(next http.Handler) http.Handler {
		if len(expected) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(strings.TrimSpace(r.Header.Get(ServiceTokenHeader)))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid service token"))
				return
			}
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithActorRole(ctx, "service")
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
