package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmasys/internal/model"
)

// ProductFilter defines filters for listing products.
type ProductFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND barcode = ? AND state = ?", tenantID, barcode, model.LifecycleActive).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tenant_id = ? AND state = ?", tenantID, model.LifecycleActive)
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var products []model.Product
	err := q.Order("name").Offset((page - 1) * limit).Limit(limit).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error {
	return softDelete[model.Product](ctx, r.db, tenantID, id, by, at)
}

// softDelete transitions one ACTIVE row of L to SOFT_DELETED, recording who
// and when. The state guard enforces the forward-only lifecycle at the
// storage level too.
func softDelete[L any](ctx context.Context, db *gorm.DB, tenantID, id, by uuid.UUID, at time.Time) error {
	var live L
	res := db.WithContext(ctx).Model(&live).
		Where("tenant_id = ? AND id = ? AND state = ?", tenantID, id, model.LifecycleActive).
		Updates(map[string]interface{}{
			"state":      model.LifecycleSoftDeleted,
			"deleted_at": at,
			"deleted_by": by,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return page, limit
}
