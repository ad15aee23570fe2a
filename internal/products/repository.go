package product

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/repo"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeEscaper neutralizes LIKE wildcards in user search input.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository persists product listings.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads the product, soft-deleted rows included.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update overwrites the editable fields and stamps updated_at.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumns(map[string]any{
			"title":        product.Title,
			"description":  product.Description,
			"price":        product.Price,
			"is_available": product.IsAvailable,
			"updated_at":   product.UpdatedAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

// HardDelete physically removes the product.
func (r *Repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByOwner returns the owner's visible products, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.visible(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListByFilter returns one page of visible products matching the filter and
// the total number of matches before pagination.
func (r *Repository) ListByFilter(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params := filter.Params()
	if total == 0 || int64(params.Offset()) >= total {
		return []models.Product{}, total, nil
	}

	dir := filter.SortDir
	if dir == "" {
		dir = enums.SortDescending
	}
	qb := r.filtered(ctx, filter)
	sortKey := enums.ParseProductSortKey(filter.SortBy.String())
	if sortKey != enums.ProductSortCreatedAt {
		qb = qb.Order(sortKey.Column() + " " + dir.SQL())
	}
	qb = qb.Order("created_at " + dir.SQL()).Order("id " + dir.SQL())

	var rows []models.Product
	if err := qb.Limit(params.PageSize).Offset(params.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ApplyOwnerStatus records the owner's status and hides (inactive) or restores
// (active) every product of the owner in one transaction. It returns the
// number of product rows touched. Re-applying is harmless.
func (r *Repository) ApplyOwnerStatus(ctx context.Context, ownerID uuid.UUID, isActive bool, at time.Time) (int64, error) {
	var affected int64
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.WithTx(tx)
		status := &models.OwnerStatus{OwnerID: ownerID, IsActive: isActive, UpdatedAt: at}
		if err := txRepo.DB(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
		}).Create(status).Error; err != nil {
			return err
		}

		res := txRepo.DB(ctx).
			Model(&models.Product{}).
			Where("user_id = ?", ownerID).
			UpdateColumns(map[string]any{
				"is_deleted": !isActive,
				"updated_at": at,
			})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// OwnerActive reports the last status synced for the owner. Owners never
// synced are active.
func (r *Repository) OwnerActive(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	var status models.OwnerStatus
	err := r.DB(ctx).First(&status, "owner_id = ?", ownerID).Error
	if repo.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return status.IsActive, nil
}

func (r *Repository) visible(ctx context.Context) *gorm.DB {
	return r.DB(ctx).Where("is_deleted = ?", false)
}

func (r *Repository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	qb := r.visible(ctx).Where("user_id = ?", filter.OwnerID)
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		qb = qb.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.MinPrice != nil {
		qb = qb.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		qb = qb.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.IsAvailable != nil {
		qb = qb.Where("is_available = ?", *filter.IsAvailable)
	}
	return qb
}
