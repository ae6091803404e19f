package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/tableorder/models"
	"gorm.io/gorm"
)

// TenantResolver maps a public slug to the tenant that owns it.
type TenantResolver interface {
	ResolveSlug(ctx context.Context, slug string) (models.Tenant, error)
}

type GormTenantResolver struct {
	DB *gorm.DB
}

func NewTenantResolver(db *gorm.DB) *GormTenantResolver {
	return &GormTenantResolver{DB: db}
}

// ResolveSlug returns ErrNotFound for unknown slugs and ErrTenantInactive for
// suspended tenants.
func (r *GormTenantResolver) ResolveSlug(ctx context.Context, slug string) (models.Tenant, error) {
	var tenant models.Tenant
	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tenant{}, ErrNotFound
	}
	if err != nil {
		return models.Tenant{}, fmt.Errorf("r.DB.First -> %w", err)
	}
	if !tenant.Active {
		return models.Tenant{}, ErrTenantInactive
	}
	return tenant, nil
}
