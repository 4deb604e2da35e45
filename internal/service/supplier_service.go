package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"farmasys/internal/dto"
	"farmasys/internal/model"
	"farmasys/internal/repository"
)

type SupplierService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, page, limit int) (*dto.SupplierListResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	Delete(ctx context.Context, tenantID, id, by uuid.UUID) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := &model.Supplier{
		TenantID:  tenantID,
		LegalName: req.LegalName,
		TaxID:     req.TaxID,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context, tenantID uuid.UUID, page, limit int) (*dto.SupplierListResponse, error) {
	suppliers, total, err := s.repo.List(ctx, tenantID, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.SupplierListResponse{Items: make([]dto.SupplierResponse, len(suppliers)), Total: total}
	for i := range suppliers {
		resp.Items[i] = *supplierToResponse(&suppliers[i])
	}
	return resp, nil
}

func (s *supplierService) Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	sup.LegalName = req.LegalName
	sup.Email = req.Email
	sup.Phone = req.Phone
	sup.Address = req.Address
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) Delete(ctx context.Context, tenantID, id, by uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, tenantID, id, by, time.Now().UTC()); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func supplierToResponse(sup *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        sup.ID.String(),
		LegalName: sup.LegalName,
		TaxID:     sup.TaxID,
		Email:     sup.Email,
		Phone:     sup.Phone,
		Address:   sup.Address,
	}
}
