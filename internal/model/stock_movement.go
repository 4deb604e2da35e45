package model

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock movement. COUNT records an inventory count
// and has zero balance impact — it exists for the audit trail only.
type MovementType string

const (
	MovementIn       MovementType = "IN"
	MovementOut      MovementType = "OUT"
	MovementAdjust   MovementType = "ADJUST"
	MovementLoss     MovementType = "LOSS"
	MovementExpiry   MovementType = "EXPIRY"
	MovementTransfer MovementType = "TRANSFER"
	MovementCount    MovementType = "COUNT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust, MovementLoss,
		MovementExpiry, MovementTransfer, MovementCount:
		return true
	}
	return false
}

// SignedImpact returns the balance delta a movement of this type and quantity
// produces: IN/ADJUST add, OUT/LOSS/EXPIRY/TRANSFER subtract, COUNT is zero.
func (t MovementType) SignedImpact(quantity int) int {
	switch t {
	case MovementIn, MovementAdjust:
		return quantity
	case MovementOut, MovementLoss, MovementExpiry, MovementTransfer:
		return -quantity
	default: // COUNT
		return 0
	}
}

// IsOutflow reports whether the type subtracts from the balance.
func (t MovementType) IsOutflow() bool {
	return t.SignedImpact(1) < 0
}

// SyncStatus tracks the offline reconciliation state of a movement.
// PENDING → {SYNCED | ERROR | CONFLICT}; all three outcomes are terminal on
// the server side — retry is a client-driven resubmission.
type SyncStatus string

const (
	SyncPending  SyncStatus = "PENDING"
	SyncSynced   SyncStatus = "SYNCED"
	SyncError    SyncStatus = "ERROR"
	SyncConflict SyncStatus = "CONFLICT"
)

// StockMovement is one entry of the per-product stock ledger. Balances are
// captured at write time so the ledger is self-describing: ResultingBalance
// must always equal PreviousBalance + SignedImpact(Type, Quantity).
type StockMovement struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID         uuid.UUID    `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID    `gorm:"type:uuid;not null"`
	Type             MovementType `gorm:"type:varchar(12);not null"`
	Quantity         int          `gorm:"not null"`
	PreviousBalance  int          `gorm:"not null"`
	ResultingBalance int          `gorm:"not null"`
	Reason           string       `gorm:"not null"`
	// ClientToken is the idempotency key generated by offline clients; a
	// resubmission with the same token is acknowledged without re-applying.
	ClientToken     *string    `gorm:"uniqueIndex"`
	ClientTimestamp *time.Time
	IntegrityHash   string     `gorm:"not null"`
	SyncStatus      SyncStatus `gorm:"type:varchar(12);not null;default:'SYNCED'"`
	Lifecycle
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
