package model

import (
	"time"

	"github.com/google/uuid"
)

// Integrity check classification relative to the configured minimum percent.
const (
	IntegrityPass      = "PASS"
	IntegrityAttention = "ATTENTION"
)

// IntegrityCheck persists the outcome of one audit run for one entity type.
// TenantID is nil for global checks. CorruptIDs holds the offending original
// ids as a JSON array — corruption is reported, never repaired.
type IntegrityCheck struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntityType    string     `gorm:"type:varchar(32);not null;index"`
	TenantID      *uuid.UUID `gorm:"type:uuid;index"`
	SampleSize    int        `gorm:"not null"`
	IntactCount   int        `gorm:"not null"`
	CorruptCount  int        `gorm:"not null"`
	PercentIntact float64    `gorm:"not null"`
	Status        string     `gorm:"type:varchar(12);not null"`
	CorruptIDs    []byte     `gorm:"type:jsonb"`
	CheckedAt     time.Time  `gorm:"not null;index"`
}
