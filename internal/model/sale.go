package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one completed counter sale. HasControlled is denormalized at
// creation time so archival and reporting never need to re-join items.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_sales_tenant_number"`
	Number        int64           `gorm:"not null;uniqueIndex:idx_sales_tenant_number"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ItemCount     int             `gorm:"not null"`
	HasControlled bool            `gorm:"not null;default:false"`
	Status        string          `gorm:"type:varchar(20);not null;default:'completed'"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID"`
	Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
