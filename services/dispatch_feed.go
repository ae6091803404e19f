package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/tableorder/metrics"
	"github.com/yeremiapane/tableorder/models"
	"gorm.io/gorm"
)

// DispatchFeed answers a waiter's poll. It keeps no state between calls:
// every call reads the current claims and order statuses.
type DispatchFeed struct {
	DB *gorm.DB
}

func NewDispatchFeed(db *gorm.DB) *DispatchFeed {
	return &DispatchFeed{DB: db}
}

// OrdersForWaiter returns the Open and InProgress orders on the tables
// waiterID claims right now, newest first.
func (f *DispatchFeed) OrdersForWaiter(ctx context.Context, tenantID, waiterID uint) ([]models.Order, error) {
	start := time.Now()
	defer func() { metrics.FeedDuration.Observe(time.Since(start).Seconds()) }()

	claimed := f.DB.Model(&models.Table{}).
		Select("id").
		Where("tenant_id = ? AND waiter_id = ?", tenantID, waiterID)

	orders := []models.Order{}
	if err := f.DB.WithContext(ctx).Preload("Items", orderItemsByPosition).
		Where("tenant_id = ? AND status IN ? AND table_id IN (?)", tenantID, models.NonTerminalStatuses, claimed).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("f.DB.Find -> %w", err)
	}
	return orders, nil
}
