package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/listingz-backend/api/middleware"
	"github.com/angelmondragon/listingz-backend/internal/accounts"
	product "github.com/angelmondragon/listingz-backend/internal/products"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
)

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param).WithDetails(map[string]any{"field": param})
	}
	return id, nil
}

func actorFromRequest(r *http.Request) (accounts.Actor, error) {
	id, role, ok := middleware.Caller(r.Context())
	if !ok {
		return accounts.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return accounts.Actor{ID: id, Role: role}, nil
}

func productCaller(r *http.Request) (product.Caller, error) {
	id, role, ok := middleware.Caller(r.Context())
	if !ok {
		return product.Caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return product.Caller{ID: id, Role: role}, nil
}
