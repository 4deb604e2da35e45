package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a pharmacy customer. Document holds the CPF.
type Customer struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_customers_tenant_document"`
	FullName string    `gorm:"not null;index"`
	Document string    `gorm:"not null;uniqueIndex:idx_customers_tenant_document"`
	Email    *string
	Phone    *string
	Lifecycle
	CreatedAt time.Time
	UpdatedAt time.Time
}
