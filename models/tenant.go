package models

import "time"

type Tenant struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Slug   string `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	Name   string `gorm:"type:varchar(255);not null" json:"name"`
	Active bool   `gorm:"not null" json:"active"`
	// TokenSecret signs this tenant's table QR codes. Empty means the
	// process-wide secret is used.
	TokenSecret string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
