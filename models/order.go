package models

import "time"

type OrderStatus string

const (
	OrderOpen       OrderStatus = "open"
	OrderInProgress OrderStatus = "in_progress"
	OrderFulfilled  OrderStatus = "fulfilled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderOpen:       0,
	OrderInProgress: 1,
	OrderFulfilled:  2,
}

// NonTerminalStatuses are the statuses a waiter still has to act on.
var NonTerminalStatuses = []OrderStatus{OrderOpen, OrderInProgress}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderFulfilled
}

// CanAdvanceTo reports whether next is strictly ahead of s. Orders never
// move backwards and never leave Fulfilled.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	from, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

type Order struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	TenantID  uint   `gorm:"not null;index" json:"tenant_id"`
	// TableID is a plain back-reference; orders keep their history when a
	// table is later removed.
	TableID        uint        `gorm:"not null;index" json:"table_id"`
	TableLabel     string      `gorm:"type:varchar(50);not null" json:"table_label"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	TotalAmount    float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"`
	FulfilledAt    *time.Time  `json:"fulfilled_at,omitempty"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}
