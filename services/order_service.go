package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/tableorder/metrics"
	"github.com/yeremiapane/tableorder/models"
	"github.com/yeremiapane/tableorder/tabletoken"
	"github.com/yeremiapane/tableorder/utils"
	"gorm.io/gorm"
)

// MaxLineQuantity caps one item's quantity in an order, after merging
// duplicate lines.
const MaxLineQuantity = 99

// LineRequest is one cart line as sent by the guest. Only the item id and
// quantity are trusted; name and price come from the catalog.
type LineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Actor is whoever asks for a status change. A waiter may only move orders
// on tables they currently claim; staff (WaiterID == 0) may move any order
// of their tenant.
type Actor struct {
	WaiterID uint
	UserID   uint
}

type OrderService struct {
	DB      *gorm.DB
	Keys    *tabletoken.Keyring
	Tables  *TableRegistry
	Catalog Catalog
}

func NewOrderService(db *gorm.DB, keys *tabletoken.Keyring, catalog Catalog) *OrderService {
	return &OrderService{
		DB:      db,
		Keys:    keys,
		Tables:  NewTableRegistry(db),
		Catalog: catalog,
	}
}

// VerifyTable checks a scanned token and returns the table it names.
func (s *OrderService) VerifyTable(ctx context.Context, tenant models.Tenant, token string) (models.Table, error) {
	codec, err := s.Keys.For(tenant.TokenSecret)
	if err != nil {
		return models.Table{}, fmt.Errorf("s.Keys.For -> %w", err)
	}

	tableID, err := codec.Verify(token)
	if err != nil {
		metrics.TokenVerifyFailures.WithLabelValues(tenant.Slug).Inc()
		return models.Table{}, ErrInvalidToken
	}

	table, err := s.Tables.Lookup(ctx, tenant.ID, tableID)
	if errors.Is(err, ErrNotFound) {
		return models.Table{}, ErrUnauthorizedTable
	}
	if err != nil {
		return models.Table{}, err
	}
	return table, nil
}

// Submit turns a cart into one Open order on the table the token names.
// Lines with the same item id are merged; names and prices are frozen from
// the catalog at this instant.
func (s *OrderService) Submit(ctx context.Context, tenant models.Tenant, token string, lines []LineRequest) (models.Order, error) {
	table, err := s.VerifyTable(ctx, tenant, token)
	if err != nil {
		return models.Order{}, err
	}

	merged, err := mergeLines(lines)
	if err != nil {
		return models.Order{}, err
	}

	skus := make([]string, 0, len(merged))
	for _, l := range merged {
		skus = append(skus, l.ItemID)
	}
	catalog, err := s.Catalog.Lookup(ctx, tenant.ID, skus)
	if err != nil {
		return models.Order{}, fmt.Errorf("s.Catalog.Lookup -> %w", err)
	}

	order := models.Order{
		Reference:  uuid.NewString(),
		TenantID:   tenant.ID,
		TableID:    table.ID,
		TableLabel: table.Label,
		Status:     models.OrderOpen,
	}
	for i, l := range merged {
		item, ok := catalog[l.ItemID]
		if !ok {
			return models.Order{}, fmt.Errorf("%w: %s", ErrUnknownItem, l.ItemID)
		}
		oi := models.OrderItem{
			Position:  i + 1,
			ItemSKU:   item.SKU,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  l.Quantity,
		}
		order.Items = append(order.Items, oi)
		order.TotalAmount += oi.Subtotal()
	}

	if err := s.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return models.Order{}, fmt.Errorf("s.DB.Create -> %w", err)
	}

	metrics.OrdersSubmitted.WithLabelValues(tenant.Slug).Inc()
	utils.InfoLogger.Printf("Order %s submitted on table %s (tenant=%s items=%d)",
		order.Reference, table.Label, tenant.Slug, len(order.Items))
	return order, nil
}

func mergeLines(lines []LineRequest) ([]LineRequest, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	var merged []LineRequest
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ItemID == "" {
			return nil, ErrUnknownItem
		}
		if l.Quantity < 1 || l.Quantity > MaxLineQuantity {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[l.ItemID]; ok {
			if merged[i].Quantity > MaxLineQuantity-l.Quantity {
				return nil, ErrInvalidQuantity
			}
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ItemID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// Advance moves an order forward to next. The change is committed only if
// the stored status is still the one it was validated against; otherwise
// ErrStateConflict is returned together with the order as it now stands.
func (s *OrderService) Advance(ctx context.Context, tenantID, orderID uint, next models.OrderStatus, actor Actor) (models.Order, error) {
	if !next.Valid() {
		return models.Order{}, ErrInvalidStatus
	}

	order, err := s.get(ctx, tenantID, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if actor.WaiterID != 0 {
		var claimed int64
		if err := s.DB.WithContext(ctx).Model(&models.Table{}).
			Where("id = ? AND tenant_id = ? AND waiter_id = ?", order.TableID, tenantID, actor.WaiterID).
			Count(&claimed).Error; err != nil {
			return models.Order{}, fmt.Errorf("s.DB.Count -> %w", err)
		}
		if claimed == 0 {
			return models.Order{}, ErrUnauthorizedTable
		}
	}

	if !order.Status.CanAdvanceTo(next) {
		return order, s.conflict(order, next, actor)
	}

	now := time.Now()
	updates := map[string]interface{}{"status": next}
	if order.AcknowledgedAt == nil {
		updates["acknowledged_at"] = now
	}
	if next == models.OrderFulfilled {
		updates["fulfilled_at"] = now
	}

	res := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", order.ID, tenantID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return models.Order{}, fmt.Errorf("s.DB.Updates -> %w", res.Error)
	}

	current, err := s.get(ctx, tenantID, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if res.RowsAffected == 0 {
		return current, s.conflict(current, next, actor)
	}

	utils.InfoLogger.Printf("Order %d moved %s -> %s", order.ID, order.Status, next)
	return current, nil
}

func (s *OrderService) conflict(order models.Order, next models.OrderStatus, actor Actor) error {
	metrics.OrderStateConflicts.Inc()
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"current":   order.Status,
		"requested": next,
		"waiter_id": actor.WaiterID,
		"user_id":   actor.UserID,
	}).Warn("Order status change rejected")
	return ErrStateConflict
}

// GetByReference is the guest's view of an order they submitted.
func (s *OrderService) GetByReference(ctx context.Context, tenantID uint, ref string) (models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Preload("Items", orderItemsByPosition).
		Where("reference = ? AND tenant_id = ?", ref, tenantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("s.DB.First -> %w", err)
	}
	return order, nil
}

// ListOpen returns every non-terminal order of the tenant, newest first.
func (s *OrderService) ListOpen(ctx context.Context, tenantID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Preload("Items", orderItemsByPosition).
		Where("tenant_id = ? AND status IN ?", tenantID, models.NonTerminalStatuses).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("s.DB.Find -> %w", err)
	}
	return orders, nil
}

func (s *OrderService) get(ctx context.Context, tenantID, orderID uint) (models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Preload("Items", orderItemsByPosition).
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("s.DB.First -> %w", err)
	}
	return order, nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
