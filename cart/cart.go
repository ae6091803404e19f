// Package cart holds a guest's pre-submission order on the guest's own
// device. The backend never owns a cart: it only sees the item ids and
// quantities sent at submission time.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

type State string

// MaxQuantity is the most of one item a line may hold. The backend refuses
// larger lines.
const MaxQuantity = 99

const (
	StateEmpty     State = "empty"
	StateBuilding  State = "building"
	StateSubmitted State = "submitted"
)

var (
	ErrUnknownItem  = errors.New("item not in cart")
	ErrInvalidItem  = errors.New("item id is required")
	ErrTableNotSet  = errors.New("cart is not bound to a table")
	ErrTableChanged = errors.New("cart is bound to another table")
)

// Item is what the menu supplies when a guest picks something.
type Item struct {
	ItemID    string
	Name      string
	UnitPrice float64
}

type Line struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Cart is the persisted form. TableID is kept apart from the lines so the
// table can be switched without touching them.
type Cart struct {
	TableID      string `json:"table_id,omitempty"`
	Lines        []Line `json:"lines"`
	LastOrderRef string `json:"last_order_ref,omitempty"`
	Submitted    bool   `json:"submitted,omitempty"`
}

// Aggregator is the cart state machine for one tenant on one device. It is
// not safe for concurrent use; a second writer on the same storage simply
// overwrites (last write wins).
type Aggregator struct {
	tenant  string
	storage Storage
	cart    Cart
}

// Open restores the tenant's cart from storage. A missing or unreadable
// payload opens an empty cart; the returned error only reports storage I/O
// failures and never prevents use of the aggregator.
func Open(tenant string, storage Storage) (*Aggregator, error) {
	a := &Aggregator{tenant: tenant, storage: storage}

	raw, err := storage.Load(tenant)
	if err != nil {
		if errors.Is(err, ErrNotStored) {
			return a, nil
		}
		return a, fmt.Errorf("storage.Load -> %w", err)
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil || !c.valid() {
		return a, nil
	}
	a.cart = c
	return a, nil
}

func (c Cart) valid() bool {
	for _, l := range c.Lines {
		if l.ItemID == "" || l.Quantity < 1 || l.Quantity > MaxQuantity {
			return false
		}
	}
	return true
}

func (a *Aggregator) State() State {
	switch {
	case len(a.cart.Lines) > 0:
		return StateBuilding
	case a.cart.Submitted:
		return StateSubmitted
	default:
		return StateEmpty
	}
}

// AddItem increments the line for item, or appends a new line with
// quantity 1 at the end.
func (a *Aggregator) AddItem(item Item) error {
	if item.ItemID == "" {
		return ErrInvalidItem
	}
	if i := a.index(item.ItemID); i >= 0 {
		if a.cart.Lines[i].Quantity < MaxQuantity {
			a.cart.Lines[i].Quantity++
		}
	} else {
		a.cart.Lines = append(a.cart.Lines, Line{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  1,
		})
	}
	return a.touch()
}

// UpdateQuantity adds delta to the line's quantity, saturating at 1 and
// MaxQuantity.
func (a *Aggregator) UpdateQuantity(itemID string, delta int) error {
	i := a.index(itemID)
	if i < 0 {
		return ErrUnknownItem
	}
	a.cart.Lines[i].Quantity = clampQuantity(a.cart.Lines[i].Quantity, delta)
	return a.touch()
}

// clampQuantity compares delta against the headroom instead of adding first,
// so extreme deltas cannot wrap.
func clampQuantity(q, delta int) int {
	switch {
	case delta >= MaxQuantity-q:
		return MaxQuantity
	case delta <= 1-q:
		return 1
	default:
		return q + delta
	}
}

func (a *Aggregator) RemoveItem(itemID string) error {
	i := a.index(itemID)
	if i < 0 {
		return ErrUnknownItem
	}
	a.cart.Lines = append(a.cart.Lines[:i], a.cart.Lines[i+1:]...)
	return a.touch()
}

// Clear empties the lines. The table binding is kept.
func (a *Aggregator) Clear() error {
	a.cart.Lines = nil
	return a.touch()
}

func (a *Aggregator) TableID() string {
	return a.cart.TableID
}

// SetTable binds the cart to tableID. Rebinding a cart that holds lines to
// another table requires force; callers ask the guest first.
func (a *Aggregator) SetTable(tableID string, force bool) error {
	if a.cart.TableID != "" && a.cart.TableID != tableID && len(a.cart.Lines) > 0 && !force {
		return ErrTableChanged
	}
	a.cart.TableID = tableID
	return a.save()
}

// MarkSubmitted empties the cart after the backend accepted it as an order.
func (a *Aggregator) MarkSubmitted(orderRef string) error {
	a.cart.Lines = nil
	a.cart.LastOrderRef = orderRef
	a.cart.Submitted = true
	return a.save()
}

func (a *Aggregator) LastOrderRef() string {
	return a.cart.LastOrderRef
}

func (a *Aggregator) Lines() []Line {
	out := make([]Line, len(a.cart.Lines))
	copy(out, a.cart.Lines)
	return out
}

func (a *Aggregator) TotalItems() int {
	n := 0
	for _, l := range a.cart.Lines {
		n += l.Quantity
	}
	return n
}

func (a *Aggregator) TotalPrice() float64 {
	var total float64
	for _, l := range a.cart.Lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return total
}

func (a *Aggregator) index(itemID string) int {
	for i, l := range a.cart.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

// touch records a mutation of the lines, leaving the submitted state.
func (a *Aggregator) touch() error {
	a.cart.Submitted = false
	return a.save()
}

func (a *Aggregator) save() error {
	raw, err := json.Marshal(a.cart)
	if err != nil {
		return err
	}
	if err := a.storage.Save(a.tenant, raw); err != nil {
		return fmt.Errorf("storage.Save -> %w", err)
	}
	return nil
}
