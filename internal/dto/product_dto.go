package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Barcode      string          `json:"barcode" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Description  *string         `json:"description"`
	Category     string          `json:"category" validate:"required"`
	Controlled   bool            `json:"controlled"`
	CostPrice    decimal.Decimal `json:"cost_price" validate:"min=0"`
	SalePrice    decimal.Decimal `json:"sale_price" validate:"gt=0"`
	StockCurrent int             `json:"stock_current" validate:"min=0"`
	StockMinimum int             `json:"stock_minimum" validate:"min=0"`
	Unit         string          `json:"unit"`
}

type UpdateProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  *string         `json:"description"`
	Category     string          `json:"category" validate:"required"`
	Controlled   bool            `json:"controlled"`
	CostPrice    decimal.Decimal `json:"cost_price" validate:"min=0"`
	SalePrice    decimal.Decimal `json:"sale_price" validate:"gt=0"`
	StockMinimum int             `json:"stock_minimum" validate:"min=0"`
}

type ProductResponse struct {
	ID           string          `json:"id"`
	Barcode      string          `json:"barcode"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Category     string          `json:"category"`
	Controlled   bool            `json:"controlled"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	StockCurrent int             `json:"stock_current"`
	StockMinimum int             `json:"stock_minimum"`
	Unit         string          `json:"unit"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int64             `json:"total"`
}
