package models

import "time"

type Table struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	TenantID uint    `gorm:"not null;index" json:"tenant_id"`
	Label    string  `gorm:"type:varchar(50);not null" json:"label"`
	WaiterID *uint   `gorm:"index" json:"waiter_id"`
	Waiter   *Waiter `gorm:"foreignKey:WaiterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"waiter,omitempty"`
	// ClaimedAt is when the current waiter took the table.
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}
