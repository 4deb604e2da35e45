package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"farmasys/internal/dto"
	"farmasys/internal/model"
	"farmasys/internal/repository"
)

type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) (*dto.CustomerListResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, tenantID, id, by uuid.UUID) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{
		TenantID: tenantID,
		FullName: req.FullName,
		Document: req.Document,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return customerToResponse(c), nil
}

func (s *customerService) Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) (*dto.CustomerListResponse, error) {
	customers, total, err := s.repo.List(ctx, tenantID, search, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.CustomerListResponse{Items: make([]dto.CustomerResponse, len(customers)), Total: total}
	for i := range customers {
		resp.Items[i] = *customerToResponse(&customers[i])
	}
	return resp, nil
}

func (s *customerService) Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	c.FullName = req.FullName
	c.Email = req.Email
	c.Phone = req.Phone
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return customerToResponse(c), nil
}

func (s *customerService) Delete(ctx context.Context, tenantID, id, by uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, tenantID, id, by, time.Now().UTC()); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:       c.ID.String(),
		FullName: c.FullName,
		Document: c.Document,
		Email:    c.Email,
		Phone:    c.Phone,
	}
}
