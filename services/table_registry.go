package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/utils"
	"gorm.io/gorm"
)

// TableRegistry owns a tenant's tables and which waiter, if any, has
// claimed each one. Claim writes are last-write-wins: a new claim simply
// overwrites the previous waiter.
type TableRegistry struct {
	DB *gorm.DB
}

func NewTableRegistry(db *gorm.DB) *TableRegistry {
	return &TableRegistry{DB: db}
}

func (r *TableRegistry) Create(ctx context.Context, tenantID uint, label string) (models.Table, error) {
	table := models.Table{TenantID: tenantID, Label: label}
	if err := r.DB.WithContext(ctx).Create(&table).Error; err != nil {
		return models.Table{}, fmt.Errorf("r.DB.Create -> %w", err)
	}
	utils.InfoLogger.Printf("New table created: %s (tenant=%d id=%d)", table.Label, tenantID, table.ID)
	return table, nil
}

func (r *TableRegistry) List(ctx context.Context, tenantID uint) ([]models.Table, error) {
	var tables []models.Table
	if err := r.DB.WithContext(ctx).Preload("Waiter").
		Where("tenant_id = ?", tenantID).
		Order("id asc").
		Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("r.DB.Find -> %w", err)
	}
	return tables, nil
}

func (r *TableRegistry) Get(ctx context.Context, tenantID, tableID uint) (models.Table, error) {
	var table models.Table
	err := r.DB.WithContext(ctx).Preload("Waiter").
		Where("id = ? AND tenant_id = ?", tableID, tenantID).
		First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Table{}, ErrNotFound
	}
	if err != nil {
		return models.Table{}, fmt.Errorf("r.DB.First -> %w", err)
	}
	return table, nil
}

// Lookup resolves the identifier carried by a verified table token.
func (r *TableRegistry) Lookup(ctx context.Context, tenantID uint, tableID string) (models.Table, error) {
	id, err := strconv.ParseUint(tableID, 10, 64)
	if err != nil || id == 0 {
		return models.Table{}, ErrNotFound
	}
	return r.Get(ctx, tenantID, uint(id))
}

// ClaimedBy lists the tables currently claimed by waiterID.
func (r *TableRegistry) ClaimedBy(ctx context.Context, tenantID, waiterID uint) ([]models.Table, error) {
	var tables []models.Table
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND waiter_id = ?", tenantID, waiterID).
		Order("id asc").
		Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("r.DB.Find -> %w", err)
	}
	return tables, nil
}

// Claim makes waiterID the table's waiter, replacing any previous one.
func (r *TableRegistry) Claim(ctx context.Context, tenantID, tableID, waiterID uint) (models.Table, error) {
	return r.Assign(ctx, tenantID, tableID, &waiterID)
}

// Release clears the table's waiter if it is still waiterID. Releasing a
// table someone else has since claimed is a no-op.
func (r *TableRegistry) Release(ctx context.Context, tenantID, tableID, waiterID uint) (models.Table, error) {
	if _, err := r.Get(ctx, tenantID, tableID); err != nil {
		return models.Table{}, err
	}
	if err := r.DB.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND tenant_id = ? AND waiter_id = ?", tableID, tenantID, waiterID).
		Updates(map[string]interface{}{"waiter_id": nil, "claimed_at": nil}).Error; err != nil {
		return models.Table{}, fmt.Errorf("r.DB.Updates -> %w", err)
	}
	return r.Get(ctx, tenantID, tableID)
}

// Assign sets or clears (waiterID == nil) the table's waiter. The waiter
// must be an active member of the same tenant.
func (r *TableRegistry) Assign(ctx context.Context, tenantID, tableID uint, waiterID *uint) (models.Table, error) {
	if _, err := r.Get(ctx, tenantID, tableID); err != nil {
		return models.Table{}, err
	}

	updates := map[string]interface{}{"waiter_id": nil, "claimed_at": nil}
	if waiterID != nil {
		var count int64
		if err := r.DB.WithContext(ctx).Model(&models.Waiter{}).
			Where("id = ? AND tenant_id = ? AND active = ?", *waiterID, tenantID, true).
			Count(&count).Error; err != nil {
			return models.Table{}, fmt.Errorf("r.DB.Count -> %w", err)
		}
		if count == 0 {
			return models.Table{}, ErrNotFound
		}
		updates["waiter_id"] = *waiterID
		updates["claimed_at"] = time.Now()
	}

	if err := r.DB.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND tenant_id = ?", tableID, tenantID).
		Updates(updates).Error; err != nil {
		return models.Table{}, fmt.Errorf("r.DB.Updates -> %w", err)
	}

	table, err := r.Get(ctx, tenantID, tableID)
	if err != nil {
		return models.Table{}, err
	}
	utils.InfoLogger.Printf("Table %d assigned to waiter %v", table.ID, table.WaiterID)
	return table, nil
}

// Delete removes a table unless non-terminal orders still reference it.
func (r *TableRegistry) Delete(ctx context.Context, tenantID, tableID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		err := tx.Where("id = ? AND tenant_id = ?", tableID, tenantID).First(&table).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.Order{}).
			Where("table_id = ? AND status IN ?", tableID, models.NonTerminalStatuses).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrTableInUse
		}
		return tx.Delete(&table).Error
	})
}
