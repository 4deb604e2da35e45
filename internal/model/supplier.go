package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a distributor or laboratory. TaxID holds the CNPJ.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_suppliers_tenant_taxid"`
	LegalName string    `gorm:"not null"`
	TaxID     string    `gorm:"not null;uniqueIndex:idx_suppliers_tenant_taxid"`
	Email     *string
	Phone     *string
	Address   *string
	Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time
}
