package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	product "github.com/angelmondragon/listingz-backend/internal/products"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/pagination"
)

type stubProductService struct {
	item        *product.ProductDTO
	err         error
	caller      product.Caller
	filter      product.ListFilter
	created     product.CreateProductRequest
	deleted     uuid.UUID
	ownerID     uuid.UUID
	ownerActive bool
}

func (s *stubProductService) Get(ctx context.Context, caller product.Caller, id uuid.UUID) (*product.ProductDTO, error) {
	s.caller = caller
	return s.item, s.err
}

func (s *stubProductService) ListMine(ctx context.Context, caller product.Caller) ([]product.ProductDTO, error) {
	s.caller = caller
	return []product.ProductDTO{}, s.err
}

func (s *stubProductService) Query(ctx context.Context, caller product.Caller, filter product.ListFilter) (*product.ListResult, error) {
	s.caller, s.filter = caller, filter
	result := pagination.NewResult([]product.ProductDTO{}, filter.Params(), 0)
	return &result, s.err
}

func (s *stubProductService) Create(ctx context.Context, caller product.Caller, req product.CreateProductRequest) (*product.ProductDTO, error) {
	s.caller, s.created = caller, req
	return s.item, s.err
}

func (s *stubProductService) Update(ctx context.Context, caller product.Caller, id uuid.UUID, req product.UpdateProductRequest) (*product.ProductDTO, error) {
	s.caller = caller
	return s.item, s.err
}

func (s *stubProductService) Delete(ctx context.Context, caller product.Caller, id uuid.UUID) error {
	s.caller, s.deleted = caller, id
	return s.err
}

func (s *stubProductService) ApplyOwnerStatus(ctx context.Context, ownerID uuid.UUID, isActive bool) (*product.OwnerStatusResult, error) {
	s.ownerID, s.ownerActive = ownerID, isActive
	return &product.OwnerStatusResult{UserID: ownerID, IsActive: isActive, Affected: 2}, s.err
}

func TestProductQueryParsesFilter(t *testing.T) {
	caller := uuid.New()
	svc := &stubProductService{}
	target := "/api/v1/products?search=lamp&min_price=10&max_price=99.5&is_available=true&sort_by=price&sort_dir=asc&page=2&page_size=5"

	rec := serve(ProductQuery(svc, nil), newRequest(http.MethodGet, target, "", caller, enums.AccountRoleUser, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	f := svc.filter
	assert.Equal(t, "lamp", f.Search)
	assert.True(t, f.MinPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, f.MaxPrice.Equal(decimal.RequireFromString("99.5")))
	require.NotNil(t, f.IsAvailable)
	assert.True(t, *f.IsAvailable)
	assert.Equal(t, enums.ProductSortPrice, f.SortBy)
	assert.Equal(t, enums.SortAscending, f.SortDir)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 5, f.PageSize)
	assert.Equal(t, caller, svc.caller.ID)
}

func TestProductQueryDefaultsAndBadInput(t *testing.T) {
	svc := &stubProductService{}
	rec := serve(ProductQuery(svc, nil), newRequest(http.MethodGet, "/api/v1/products?page=0&page_size=500", "", uuid.New(), enums.AccountRoleUser, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.filter.Page)
	assert.Equal(t, enums.ProductSortCreatedAt, svc.filter.SortBy)
	assert.Equal(t, enums.SortDescending, svc.filter.SortDir)

	var page struct {
		Page     int `json:"page"`
		PageSize int `json:"page_size"`
	}
	decodeData(t, rec, &page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, pagination.MaxPageSize, page.PageSize)

	rec = serve(ProductQuery(svc, nil), newRequest(http.MethodGet, "/api/v1/products?min_price=cheap", "", uuid.New(), enums.AccountRoleUser, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductQueryRequiresCaller(t *testing.T) {
	rec := serve(ProductQuery(&stubProductService{}, nil), newRequest(http.MethodGet, "/api/v1/products", "", uuid.Nil, "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductCreate(t *testing.T) {
	caller := uuid.New()
	svc := &stubProductService{item: &product.ProductDTO{ID: uuid.New(), Title: "Chair"}}
	rec := serve(ProductCreate(svc, nil), newRequest(http.MethodPost, "/api/v1/products", `{"title":"Chair","description":"oak","price":"50.00"}`, caller, enums.AccountRoleUser, nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Chair", svc.created.Title)
	assert.True(t, svc.created.Price.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, svc.created.IsAvailable)

	rec = serve(ProductCreate(svc, nil), newRequest(http.MethodPost, "/api/v1/products", `{"description":"no title","price":1}`, caller, enums.AccountRoleUser, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductGetMapsGuardErrors(t *testing.T) {
	id := uuid.New()
	params := map[string]string{"id": id.String()}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"missing", pkgerrors.New(pkgerrors.CodeNotFound, "product not found"), http.StatusNotFound},
		{"not owner", pkgerrors.New(pkgerrors.CodeUnauthorized, "not the owner"), http.StatusUnauthorized},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubProductService{item: &product.ProductDTO{ID: id}, err: tt.err}
			rec := serve(ProductGet(svc, nil), newRequest(http.MethodGet, "/api/v1/products/"+id.String(), "", uuid.New(), enums.AccountRoleUser, params))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestProductUpdateRequiresAvailability(t *testing.T) {
	id := uuid.New()
	svc := &stubProductService{item: &product.ProductDTO{ID: id}}
	params := map[string]string{"id": id.String()}

	rec := serve(ProductUpdate(svc, nil), newRequest(http.MethodPut, "/", `{"title":"T","description":"","price":"5"}`, uuid.New(), enums.AccountRoleUser, params))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(ProductUpdate(svc, nil), newRequest(http.MethodPut, "/", `{"title":"T","description":"","price":"5","is_available":false}`, uuid.New(), enums.AccountRoleUser, params))
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.err = pkgerrors.New(pkgerrors.CodeForbidden, "not the owner")
	rec = serve(ProductUpdate(svc, nil), newRequest(http.MethodPut, "/", `{"title":"T","description":"","price":"5","is_available":true}`, uuid.New(), enums.AccountRoleUser, params))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductDelete(t *testing.T) {
	id := uuid.New()
	svc := &stubProductService{}
	rec := serve(ProductDelete(svc, nil), newRequest(http.MethodDelete, "/", "", uuid.New(), enums.AccountRoleUser, map[string]string{"id": id.String()}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, svc.deleted)
}

func TestProductOwnerStatus(t *testing.T) {
	owner := uuid.New()
	svc := &stubProductService{}
	body := `{"user_id":"` + owner.String() + `","is_active":false}`

	rec := serve(ProductOwnerStatus(svc, nil), newRequest(http.MethodPost, "/internal/v1/products/owner-status", body, uuid.Nil, "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, owner, svc.ownerID)
	assert.False(t, svc.ownerActive)

	var result product.OwnerStatusResult
	decodeData(t, rec, &result)
	assert.EqualValues(t, 2, result.Affected)

	rec = serve(ProductOwnerStatus(svc, nil), newRequest(http.MethodPost, "/internal/v1/products/owner-status", `{"is_active":true}`, uuid.Nil, "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
