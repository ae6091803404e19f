package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/tableorder/models"
	"gorm.io/gorm"
)

type CatalogItem struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Catalog supplies item identity, name and price. Orders only copy these
// values; the catalog is never written through this interface.
type Catalog interface {
	Lookup(ctx context.Context, tenantID uint, skus []string) (map[string]CatalogItem, error)
	List(ctx context.Context, tenantID uint) ([]CatalogItem, error)
}

type GormCatalog struct {
	DB *gorm.DB
}

func NewCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{DB: db}
}

func (c *GormCatalog) Lookup(ctx context.Context, tenantID uint, skus []string) (map[string]CatalogItem, error) {
	var items []models.MenuItem
	if err := c.DB.WithContext(ctx).
		Where("tenant_id = ? AND available = ? AND sku IN ?", tenantID, true, skus).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("c.DB.Find -> %w", err)
	}

	out := make(map[string]CatalogItem, len(items))
	for _, it := range items {
		out[it.SKU] = toCatalogItem(it)
	}
	return out, nil
}

func (c *GormCatalog) List(ctx context.Context, tenantID uint) ([]CatalogItem, error) {
	var items []models.MenuItem
	if err := c.DB.WithContext(ctx).
		Where("tenant_id = ? AND available = ?", tenantID, true).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("c.DB.Find -> %w", err)
	}

	out := make([]CatalogItem, 0, len(items))
	for _, it := range items {
		out = append(out, toCatalogItem(it))
	}
	return out, nil
}

func toCatalogItem(it models.MenuItem) CatalogItem {
	return CatalogItem{SKU: it.SKU, Name: it.Name, Price: it.Price}
}
