package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type PrescriptionRequest struct {
	ProductID      string  `json:"product_id" validate:"required,uuid"`
	Practitioner   string  `json:"practitioner" validate:"required"`
	CouncilNumber  string  `json:"council_number" validate:"required"`
	DocumentNumber string  `json:"document_number" validate:"required"`
	Notes          *string `json:"notes"`
}

type CreateSaleRequest struct {
	CustomerID    *string               `json:"customer_id" validate:"omitempty,uuid"`
	Items         []SaleItemRequest     `json:"items" validate:"required,min=1,dive"`
	Prescriptions []PrescriptionRequest `json:"prescriptions" validate:"dive"`
}

type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Number        int64              `json:"number"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	ItemCount     int                `json:"item_count"`
	HasControlled bool               `json:"has_controlled"`
	Status        string             `json:"status"`
	Items         []SaleItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Total int64          `json:"total"`
}
