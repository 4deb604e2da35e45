package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"farmasys/internal/dto"
	"farmasys/internal/model"
	"farmasys/internal/offline"
	"farmasys/internal/repository"
)

type StockService interface {
	// SyncBatch reconciles a batch of movements recorded offline.
	SyncBatch(ctx context.Context, tenantID, userID uuid.UUID, req dto.SyncBatchRequest) (*offline.BatchResult, error)
	ListMovements(ctx context.Context, tenantID uuid.UUID, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockService struct {
	movements  repository.StockMovementRepository
	reconciler *offline.Reconciler
}

func NewStockService(movements repository.StockMovementRepository) StockService {
	return &stockService{
		movements:  movements,
		reconciler: offline.NewReconciler(movements),
	}
}

func (s *stockService) SyncBatch(ctx context.Context, tenantID, userID uuid.UUID, req dto.SyncBatchRequest) (*offline.BatchResult, error) {
	items := make([]offline.SubmittedMovement, 0, len(req.Movements))
	for _, m := range req.Movements {
		sub := offline.SubmittedMovement{
			ClientToken:     m.ClientToken,
			Type:            model.MovementType(m.MovementType),
			Quantity:        m.Quantity,
			Reason:          m.Reason,
			ClientTimestamp: m.ClientTimestamp,
			ClientHash:      m.ClientHash,
		}
		// An unparseable product id still enters the batch: the reconciler
		// classifies it as an item-level error so the rest keeps flowing.
		if pid, err := uuid.Parse(m.ProductID); err == nil {
			sub.ProductID = pid
		}
		items = append(items, sub)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("lote de sincronizacao vazio")
	}
	return s.reconciler.ProcessBatch(ctx, tenantID, userID, items)
}

func (s *stockService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return s.movements.List(ctx, tenantID, filter)
}
