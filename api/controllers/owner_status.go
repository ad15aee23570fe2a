package controllers

import (
	"net/http"

	"github.com/angelmondragon/listingz-backend/api/responses"
	"github.com/angelmondragon/listingz-backend/api/validators"
	product "github.com/angelmondragon/listingz-backend/internal/products"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
)

// ProductOwnerStatus applies an owner's account status to all of their
// listings. Called by the identity service, never by end users.
func ProductOwnerStatus(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceUnavailable())
			return
		}

		var body product.OwnerStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"owner_id":        body.UserID.String(),
				"idempotency_key": r.Header.Get("Idempotency-Key"),
			})
		}

		result, err := svc.ApplyOwnerStatus(ctx, body.UserID, *body.IsActive)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
