package controllers

import (
	"net/http"

	"github.com/angelmondragon/listingz-backend/api/responses"
	"github.com/angelmondragon/listingz-backend/api/validators"
	"github.com/angelmondragon/listingz-backend/internal/accounts"
	"github.com/angelmondragon/listingz-backend/internal/propagation"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
)

type changeStatusResponse struct {
	Message     string               `json:"message"`
	User        *accounts.AccountDTO `json:"user"`
	Propagation propagation.Result   `json:"propagation"`
}

// AdminChangeUserStatus flips an account between Active and Inactive. A failed
// propagation is reported in the body and never fails the request.
func AdminChangeUserStatus(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}

		var body accounts.ChangeStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ChangeStatus(r.Context(), body.UserID, *body.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, changeStatusResponse{
			Message:     result.Message(),
			User:        result.Account,
			Propagation: result.Propagation,
		})
	}
}
