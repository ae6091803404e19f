package models

import "time"

// MenuItem is the read side of the tenant's menu. SKU is the item identity
// carried by guest carts.
type MenuItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"not null;uniqueIndex:idx_menu_items_tenant_sku" json:"tenant_id"`
	SKU         string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_menu_items_tenant_sku" json:"sku"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	Available   bool      `gorm:"not null" json:"available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
