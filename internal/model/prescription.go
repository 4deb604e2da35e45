package model

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is one entry of the controlled-substance ledger (livro de
// receituário). Regulation requires this ledger to stay live indefinitely,
// so the prescription type belongs to the protected retention set and never
// reaches the archive store.
type Prescription struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	SaleID         *uuid.UUID `gorm:"type:uuid;index"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null"`
	Practitioner   string     `gorm:"not null"`
	CouncilNumber  string     `gorm:"not null"` // CRM/CRO of the prescriber
	DocumentNumber string     `gorm:"not null"` // numbered prescription form
	Notes          *string
	Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time
}
