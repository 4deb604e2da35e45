package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArchiveMeta is the common header of every archive row. Archive tables are
// append-only: rows are inserted by the archival job and never updated. The
// IntegrityHash is a digest over the canonical critical fields, recomputable
// from the denormalized columns alone, and SchemaVersion pins the
// canonicalization rules that were active at archive time.
type ArchiveMeta struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OriginalID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	DeletedAt      time.Time  `gorm:"not null"`
	DeletedBy      *uuid.UUID `gorm:"type:uuid"`
	ArchivedAt     time.Time  `gorm:"not null;index"`
	ArchivalReason string     `gorm:"not null"`
	SchemaVersion  int        `gorm:"not null"`
	Snapshot       []byte     `gorm:"type:jsonb;not null"`
	IntegrityHash  string     `gorm:"not null"`
}

// SetMeta fills the header; promoted to every archive row type so the batch
// processor can stamp hash and timestamps without knowing the concrete type.
func (m *ArchiveMeta) SetMeta(meta ArchiveMeta) { *m = meta }

// ArchivedSale is the archive row for a sale, with the query fields the
// retention reports aggregate over.
type ArchivedSale struct {
	ArchiveMeta
	SaleNumber    int64           `gorm:"not null"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ItemCount     int             `gorm:"not null"`
	HasControlled bool            `gorm:"not null"`
}

// ArchivedStockMovement is the archive row for a stock-ledger entry.
type ArchivedStockMovement struct {
	ArchiveMeta
	ProductID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	MovementType     MovementType `gorm:"type:varchar(12);not null"`
	Quantity         int          `gorm:"not null"`
	ResultingBalance int          `gorm:"not null"`
}

// ArchivedCustomer is the archive row for a customer.
type ArchivedCustomer struct {
	ArchiveMeta
	Document string `gorm:"not null"`
	FullName string `gorm:"not null"`
}

// ArchivedSupplier is the archive row for a supplier.
type ArchivedSupplier struct {
	ArchiveMeta
	TaxID     string `gorm:"not null"`
	LegalName string `gorm:"not null"`
}
