package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/repo"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/ownership"
	"github.com/angelmondragon/listingz-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	productNotFoundMessage = "product not found"
	ownerInactiveMessage   = "account is deactivated"
)

// Caller is the authenticated user acting on products.
type Caller struct {
	ID   uuid.UUID
	Role enums.AccountRole
}

// Service exposes product management operations.
type Service interface {
	Get(ctx context.Context, caller Caller, id uuid.UUID) (*ProductDTO, error)
	ListMine(ctx context.Context, caller Caller) ([]ProductDTO, error)
	Query(ctx context.Context, caller Caller, filter ListFilter) (*ListResult, error)
	Create(ctx context.Context, caller Caller, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, caller Caller, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID) error
	ApplyOwnerStatus(ctx context.Context, ownerID uuid.UUID, isActive bool) (*OwnerStatusResult, error)
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error)
	ListByFilter(ctx context.Context, filter ListFilter) ([]models.Product, int64, error)
	ApplyOwnerStatus(ctx context.Context, ownerID uuid.UUID, isActive bool, at time.Time) (int64, error)
	OwnerActive(ctx context.Context, ownerID uuid.UUID) (bool, error)
}

// ServiceParams bundles the dependencies of the product service.
type ServiceParams struct {
	Repo   productRepository
	Logger *logger.Logger
	Clock  func() time.Time
}

type service struct {
	repo productRepository
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: params.Repo, logg: logg, now: clock}, nil
}

func (s *service) Get(ctx context.Context, caller Caller, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, caller, id, ownership.ActionRead)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

func (s *service) ListMine(ctx context.Context, caller Caller) ([]ProductDTO, error) {
	rows, err := s.repo.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return toDTOs(rows), nil
}

// Query runs the filter engine scoped to the caller's own products.
func (s *service) Query(ctx context.Context, caller Caller, filter ListFilter) (*ListResult, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot exceed max_price")
	}
	filter.OwnerID = caller.ID
	params := filter.Params()
	filter.Page, filter.PageSize = params.Page, params.PageSize

	rows, total, err := s.repo.ListByFilter(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "query products")
	}
	result := pagination.Map(pagination.NewResult(rows, params, total), func(p models.Product) ProductDTO {
		return *NewProductDTO(&p)
	})
	return &result, nil
}

func (s *service) Create(ctx context.Context, caller Caller, req CreateProductRequest) (*ProductDTO, error) {
	if caller.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller")
	}
	title, description, err := validateFields(req.Title, req.Description, req.Price)
	if err != nil {
		return nil, err
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	// a still-valid token must not publish listings for a deactivated owner
	active, err := s.repo.OwnerActive(ctx, caller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load owner status")
	}
	if !active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, ownerInactiveMessage)
	}

	product, err := s.repo.Create(ctx, &models.Product{
		Title:       title,
		Description: description,
		Price:       req.Price.Round(2),
		IsAvailable: available,
		UserID:      caller.ID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	s.logg.Info(s.productCtx(ctx, product), "product.created")
	return NewProductDTO(product), nil
}

func (s *service) Update(ctx context.Context, caller Caller, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	title, description, err := validateFields(req.Title, req.Description, req.Price)
	if err != nil {
		return nil, err
	}
	if req.IsAvailable == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "is_available is required")
	}
	product, err := s.loadOwned(ctx, caller, id, ownership.ActionUpdate)
	if err != nil {
		return nil, err
	}

	product.Title = title
	product.Description = description
	product.Price = req.Price.Round(2)
	product.IsAvailable = *req.IsAvailable
	product.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, s.mapLookupErr(err, "update product")
	}
	s.logg.Info(s.productCtx(ctx, updated), "product.updated")
	return NewProductDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	product, err := s.loadOwned(ctx, caller, id, ownership.ActionDelete)
	if err != nil {
		return err
	}
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return s.mapLookupErr(err, "delete product")
	}
	s.logg.Info(s.productCtx(ctx, product), "product.deleted")
	return nil
}

// ApplyOwnerStatus cascades an owner's account status onto their listings.
func (s *service) ApplyOwnerStatus(ctx context.Context, ownerID uuid.UUID, isActive bool) (*OwnerStatusResult, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user_id is required")
	}
	affected, err := s.repo.ApplyOwnerStatus(ctx, ownerID, isActive, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply owner status")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"owner_id":  ownerID.String(),
		"is_active": isActive,
		"affected":  affected,
	})
	s.logg.Info(ctx, "product.owner_status_applied")
	return &OwnerStatusResult{UserID: ownerID, IsActive: isActive, Affected: affected}, nil
}

// loadOwned resolves existence before ownership so a missing or hidden product
// is NotFound regardless of who asks.
func (s *service) loadOwned(ctx context.Context, caller Caller, id uuid.UUID, action ownership.Action) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupErr(err, "load product")
	}
	if product.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	if err := ownership.Require(action, product.UserID, caller.ID, caller.Role); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) mapLookupErr(err error, op string) error {
	if repo.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func (s *service) productCtx(ctx context.Context, p *models.Product) context.Context {
	return s.logg.WithFields(ctx, map[string]any{
		"product_id": p.ID.String(),
		"owner_id":   p.UserID.String(),
	})
}

func validateFields(title, description string, price decimal.Decimal) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	details := map[string]string{}
	switch {
	case title == "":
		details["title"] = "title is required"
	case len([]rune(title)) > MaxTitleLength:
		details["title"] = fmt.Sprintf("title must be at most %d characters", MaxTitleLength)
	}
	if len([]rune(description)) > MaxDescriptionLength {
		details["description"] = fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength)
	}
	if !price.IsPositive() || !price.LessThan(MaxPrice) {
		details["price"] = "price must be greater than 0 and less than 1000000"
	}
	if len(details) > 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return title, description, nil
}
