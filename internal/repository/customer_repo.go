package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmasys/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error)
	Update(ctx context.Context, c *model.Customer) error
	SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("tenant_id = ? AND state = ?", tenantID, model.LifecycleActive)
	if search != "" {
		q = q.Where("full_name ILIKE ? OR document LIKE ?", "%"+search+"%", search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	var customers []model.Customer
	err := q.Order("full_name").Offset((page - 1) * limit).Limit(limit).Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error {
	return softDelete[model.Customer](ctx, r.db, tenantID, id, by, at)
}
