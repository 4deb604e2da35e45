package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmasys/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, tenantSlug, username string) (*model.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("active", true).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, tenantSlug, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN tenants ON tenants.id = users.tenant_id").
		Where("tenants.slug = ? AND users.username = ? AND users.active", tenantSlug, username).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
