package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"farmasys/internal/dto"
	"farmasys/internal/model"
	"farmasys/internal/repository"
	"farmasys/internal/retention"
)

// ErrPrescriptionRequired is returned when a sale contains a controlled
// product without a matching prescription entry.
var ErrPrescriptionRequired = errors.New("produto controlado exige receita")

type SaleService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter repository.SaleFilter) (*dto.SaleListResponse, error)
	Cancel(ctx context.Context, tenantID, id, by uuid.UUID) error
}

type saleService struct {
	repo      repository.SaleRepository
	movements repository.StockMovementRepository
	hasher    retention.Hasher
}

func NewSaleService(repo repository.SaleRepository, movements repository.StockMovementRepository) SaleService {
	return &saleService{repo: repo, movements: movements}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Create registers a counter sale as one ACID transaction: sale number,
// sale plus items, stock decrement with a ledger movement per item, and the
// prescription entries for controlled products. Controlled items without a
// prescription abort the whole sale.
func (s *saleService) Create(ctx context.Context, tenantID, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("customer_id invalido: %w", err)
		}
		customerID = &cid
	}

	prescByProduct := make(map[uuid.UUID]dto.PrescriptionRequest, len(req.Prescriptions))
	for _, pr := range req.Prescriptions {
		pid, err := uuid.Parse(pr.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product_id invalido na receita: %w", err)
		}
		prescByProduct[pid] = pr
	}

	var sale model.Sale
	productNames := make(map[uuid.UUID]string, len(req.Items))

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextNumber(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		sale = model.Sale{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Number:     number,
			CustomerID: customerID,
			UserID:     userID,
			Status:     "completed",
		}

		total := decimal.Zero
		itemCount := 0
		now := time.Now().UTC()

		for _, item := range req.Items {
			pid, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fmt.Errorf("product_id invalido: %w", err)
			}

			// Row lock serializes concurrent sales and offline syncs per product.
			var p model.Product
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("tenant_id = ? AND id = ? AND state = ?", tenantID, pid, model.LifecycleActive).
				First(&p).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("produto %s nao encontrado", item.ProductID)
			}
			if err != nil {
				return err
			}
			productNames[pid] = p.Name

			if p.StockCurrent < item.Quantity {
				return fmt.Errorf("estoque insuficiente para %s: disponivel %d, solicitado %d",
					p.Name, p.StockCurrent, item.Quantity)
			}
			if p.Controlled {
				if _, ok := prescByProduct[pid]; !ok {
					return ErrPrescriptionRequired
				}
				sale.HasControlled = true
			}

			subtotal := p.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: pid,
				Quantity:  item.Quantity,
				UnitPrice: p.SalePrice,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
			itemCount += item.Quantity

			previous := p.StockCurrent
			resulting := previous - item.Quantity
			mov := &model.StockMovement{
				ID:               uuid.New(),
				TenantID:         tenantID,
				ProductID:        pid,
				UserID:           userID,
				Type:             model.MovementOut,
				Quantity:         item.Quantity,
				PreviousBalance:  previous,
				ResultingBalance: resulting,
				Reason:           fmt.Sprintf("Venda #%d", number),
				SyncStatus:       model.SyncSynced,
			}
			hash, err := s.hasher.Sum(retention.CurrentSchemaVersion,
				retention.MovementLedgerFields(mov.ID, tenantID, pid, mov.Type, mov.Quantity, previous, resulting))
			if err != nil {
				return err
			}
			mov.IntegrityHash = hash
			if err := s.movements.CreateTx(tx, mov); err != nil {
				return err
			}
			if err := tx.Model(&model.Product{}).
				Where("tenant_id = ? AND id = ?", tenantID, pid).
				Update("stock_current", resulting).Error; err != nil {
				return err
			}
		}

		sale.TotalValue = total
		sale.ItemCount = itemCount
		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		// Controlled-substance ledger entries, linked back to the sale.
		for pid, pr := range prescByProduct {
			if customerID == nil {
				return errors.New("venda com controlado exige cliente identificado")
			}
			presc := &model.Prescription{
				TenantID:       tenantID,
				SaleID:         &sale.ID,
				CustomerID:     *customerID,
				ProductID:      pid,
				Practitioner:   pr.Practitioner,
				CouncilNumber:  pr.CouncilNumber,
				DocumentNumber: pr.DocumentNumber,
				Notes:          pr.Notes,
			}
			if err := tx.Create(presc).Error; err != nil {
				return err
			}
		}

		sale.CreatedAt = now
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := saleToResponse(&sale)
	for i := range resp.Items {
		pid, _ := uuid.Parse(resp.Items[i].ProductID)
		resp.Items[i].ProductName = productNames[pid]
	}
	return resp, nil
}

func (s *saleService) Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := saleToResponse(sale)
	for i, item := range sale.Items {
		if item.Product != nil {
			resp.Items[i].ProductName = item.Product.Name
		}
	}
	return resp, nil
}

func (s *saleService) List(ctx context.Context, tenantID uuid.UUID, filter repository.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{Items: make([]dto.SaleResponse, len(sales)), Total: total}
	for i := range sales {
		resp.Items[i] = *saleToResponse(&sales[i])
	}
	return resp, nil
}

// Cancel soft-deletes the sale; stock is not restored automatically because a
// cancellation follows pharmacy-specific return rules handled at the counter.
func (s *saleService) Cancel(ctx context.Context, tenantID, id, by uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, tenantID, id, by, time.Now().UTC()); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID.String(),
		Number:        sale.Number,
		TotalValue:    sale.TotalValue,
		ItemCount:     sale.ItemCount,
		HasControlled: sale.HasControlled,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt,
	}
	if sale.CustomerID != nil {
		cid := sale.CustomerID.String()
		resp.CustomerID = &cid
	}
	for _, item := range sale.Items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return resp
}
