package model

import (
	"time"

	"github.com/google/uuid"
)

// User stores system users with role-based access, scoped to a tenant.
// Role: "balconista" | "farmaceutico" | "administrador"
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_users_tenant_username"`
	Username     string    `gorm:"not null;uniqueIndex:idx_users_tenant_username"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
