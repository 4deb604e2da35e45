package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"farmasys/internal/model"
	"farmasys/internal/offline"
)

// StockMovementFilter defines filters for listing the stock ledger.
type StockMovementFilter struct {
	ProductID *uuid.UUID
	Type      string
	Page      int
	Limit     int
}

// StockMovementRepository persists the stock ledger and implements
// offline.Store for the reconciler.
type StockMovementRepository interface {
	offline.Store
	Create(ctx context.Context, m *model.StockMovement) error
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	List(ctx context.Context, tenantID uuid.UUID, filter StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) Create(ctx context.Context, m *model.StockMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) FindByClientToken(ctx context.Context, tenantID uuid.UUID, token string) (*model.StockMovement, error) {
	var m model.StockMovement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_token = ?", tenantID, token).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyMovement serializes concurrent reconciliation per product with a
// SELECT ... FOR UPDATE on the product row, then persists the movement fn
// returns and the new balance in the same transaction.
func (r *stockMovementRepo) ApplyMovement(ctx context.Context, tenantID, productID uuid.UUID, fn func(balance int) (*model.StockMovement, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ? AND state = ?", tenantID, productID, model.LifecycleActive).
			First(&p).Error
		if err == gorm.ErrRecordNotFound {
			return offline.ErrProductNotFound
		}
		if err != nil {
			return err
		}

		m, err := fn(p.StockCurrent)
		if err != nil {
			return err
		}
		if m == nil {
			return nil
		}

		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&model.Product{}).
			Where("id = ?", p.ID).
			Update("stock_current", m.ResultingBalance).Error
	})
}

func (r *stockMovementRepo) List(ctx context.Context, tenantID uuid.UUID, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Where("tenant_id = ? AND state <> ?", tenantID, model.LifecycleArchived).
		Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&movements).Error
	return movements, total, err
}
