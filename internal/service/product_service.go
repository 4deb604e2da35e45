package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmasys/internal/dto"
	"farmasys/internal/model"
	"farmasys/internal/repository"
)

var ErrNotFound = errors.New("registro nao encontrado")

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter repository.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, tenantID, id, by uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		TenantID:     tenantID,
		Barcode:      req.Barcode,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Controlled:   req.Controlled,
		CostPrice:    req.CostPrice,
		SalePrice:    req.SalePrice,
		StockCurrent: req.StockCurrent,
		StockMinimum: req.StockMinimum,
		Unit:         req.Unit,
	}
	if p.Unit == "" {
		p.Unit = "unidade"
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, tenantID, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return productToResponse(p), nil
}

func (s *productService) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, tenantID, barcode)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{Items: make([]dto.ProductResponse, len(products)), Total: total}
	for i := range products {
		resp.Items[i] = *productToResponse(&products[i])
	}
	return resp, nil
}

func (s *productService) Update(ctx context.Context, tenantID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Category = req.Category
	p.Controlled = req.Controlled
	p.CostPrice = req.CostPrice
	p.SalePrice = req.SalePrice
	p.StockMinimum = req.StockMinimum
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Delete(ctx context.Context, tenantID, id, by uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, tenantID, id, by, time.Now().UTC()); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		Barcode:      p.Barcode,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Controlled:   p.Controlled,
		CostPrice:    p.CostPrice,
		SalePrice:    p.SalePrice,
		StockCurrent: p.StockCurrent,
		StockMinimum: p.StockMinimum,
		Unit:         p.Unit,
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
