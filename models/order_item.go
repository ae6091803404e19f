package models

import "time"

// OrderItem is a snapshot of a menu item at submission time. Later menu
// edits never change it.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order     Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Position  int       `gorm:"not null" json:"position"`
	ItemSKU   string    `gorm:"type:varchar(64);not null" json:"item_sku"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
