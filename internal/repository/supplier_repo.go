package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmasys/internal/model"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.Supplier, int64, error)
	Update(ctx context.Context, s *model.Supplier) error
	SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepo) List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.Supplier, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Supplier{}).
		Where("tenant_id = ? AND state = ?", tenantID, model.LifecycleActive)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	var suppliers []model.Supplier
	err := q.Order("legal_name").Offset((page - 1) * limit).Limit(limit).Find(&suppliers).Error
	return suppliers, total, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *supplierRepo) SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error {
	return softDelete[model.Supplier](ctx, r.db, tenantID, id, by, at)
}
