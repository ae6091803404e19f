package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderOpen, OrderInProgress, true},
		{OrderOpen, OrderFulfilled, true},
		{OrderInProgress, OrderFulfilled, true},
		{OrderOpen, OrderOpen, false},
		{OrderInProgress, OrderOpen, false},
		{OrderFulfilled, OrderOpen, false},
		{OrderFulfilled, OrderInProgress, false},
		{OrderFulfilled, OrderFulfilled, false},
		{OrderOpen, "cancelled", false},
		{"", OrderInProgress, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to), "%q -> %q", tt.from, tt.to)
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, OrderFulfilled.Terminal())
	assert.False(t, OrderOpen.Terminal())
	assert.False(t, OrderInProgress.Terminal())
	assert.False(t, OrderStatus("cancelled").Valid())
}

func TestOrderItem_Subtotal(t *testing.T) {
	assert.Equal(t, 10.0, OrderItem{UnitPrice: 5, Quantity: 2}.Subtotal())
}
