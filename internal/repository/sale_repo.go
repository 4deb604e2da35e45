package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmasys/internal/model"
)

// SaleFilter defines filters for listing sales.
type SaleFilter struct {
	Date   string // YYYY-MM-DD, empty = today
	Status string
	Page   int
	Limit  int
}

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
	NextNumber(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]model.Sale, int64, error)
	SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("tenant_id = ?", tenantID).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) NextNumber(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (int64, error) {
	// Per-tenant counter under the transaction's row lock.
	var num int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(number), 0) + 1 FROM sales WHERE tenant_id = ?`, tenantID,
	).Scan(&num).Error
	return num, err
}

func (r *saleRepo) List(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("tenant_id = ? AND state <> ?", tenantID, model.LifecycleArchived)

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var sales []model.Sale
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) SoftDelete(ctx context.Context, tenantID, id, by uuid.UUID, at time.Time) error {
	return softDelete[model.Sale](ctx, r.db, tenantID, id, by, at)
}
