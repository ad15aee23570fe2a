package controllers

import (
	"math"
	"net/http"

	"github.com/angelmondragon/listingz-backend/api/responses"
	"github.com/angelmondragon/listingz-backend/api/validators"
	product "github.com/angelmondragon/listingz-backend/internal/products"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/pagination"
)

const maxSearchLength = 100

func productServiceUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
}

// ProductQuery is the filtered browse endpoint. The owner is always the caller.
func ProductQuery(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceUnavailable())
			return
		}
		caller, err := productCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Query(r.Context(), caller, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseListFilter(r *http.Request) (product.ListFilter, error) {
	filter := product.ListFilter{
		Search:  validators.ParseQueryString(r, "search", maxSearchLength),
		SortBy:  enums.ParseProductSortKey(r.URL.Query().Get("sort_by")),
		SortDir: enums.ParseSortDirection(r.URL.Query().Get("sort_dir")),
	}

	var err error
	// out-of-range paging is clamped by the service rather than rejected
	if filter.Page, err = validators.ParseQueryInt(r, "page", 1, math.MinInt32, math.MaxInt32); err != nil {
		return filter, err
	}
	if filter.PageSize, err = validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, math.MinInt32, math.MaxInt32); err != nil {
		return filter, err
	}
	if filter.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return filter, err
	}
	if filter.IsAvailable, err = validators.ParseQueryBool(r, "is_available"); err != nil {
		return filter, err
	}
	return filter, nil
}

func ProductListMine(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceUnavailable())
			return
		}
		caller, err := productCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListMine(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceUnavailable())
			return
		}
		caller, err := productCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), caller, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceUnavailable())
			return
		}
		caller, err := productCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body product.CreateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), caller, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceUnavailable())
			return
		}
		caller, err := productCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body product.UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), caller, id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ProductDelete physically removes the product. Status-driven hiding goes
// through ProductOwnerStatus instead.
func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, productServiceUnavailable())
			return
		}
		caller, err := productCaller(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), caller, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
