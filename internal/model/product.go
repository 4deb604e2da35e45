package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Controlled indicates a regulated substance
// (lista ANVISA) — sales of controlled products require a prescription entry
// and are counted separately in retention reports.
//
// Products are in the protected retention set: the catalog row must outlive
// its sales for referential compatibility, so it is soft-deletable but never
// archived.
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_products_tenant_barcode"`
	Barcode      string    `gorm:"not null;uniqueIndex:idx_products_tenant_barcode"`
	Name         string    `gorm:"index;not null"`
	Description  *string
	Category     string          `gorm:"not null"`
	Controlled   bool            `gorm:"not null;default:false"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockCurrent int             `gorm:"not null;default:0"`
	StockMinimum int             `gorm:"not null;default:5"`
	Unit         string          `gorm:"not null;default:'unidade'"`
	Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time
}
