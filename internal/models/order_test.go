package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusProcessing, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := tt.from.ValidateTransition(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}

			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.from, te.From)
			assert.Equal(t, tt.to, te.To)
		})
	}
}

func TestSameStatusIsNoop(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.NoError(t, s.ValidateTransition(s))
	}
}

func TestUnknownTargetStatusRejected(t *testing.T) {
	assert.Error(t, OrderStatusPending.ValidateTransition("Lost"))
	assert.False(t, OrderStatus("Lost").Valid())
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
	assert.Empty(t, OrderStatusDelivered.NextStatuses())
	assert.Equal(t, []OrderStatus{OrderStatusShipped, OrderStatusCancelled}, OrderStatusProcessing.NextStatuses())
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	next := OrderStatusPending.NextStatuses()
	next[0] = OrderStatusDelivered
	assert.Equal(t, OrderStatusProcessing, OrderStatusPending.NextStatuses()[0])
}

func TestItemsTotal(t *testing.T) {
	items := []CartItem{
		{VariantID: "a", Quantity: 2, Price: decimal.NewFromInt(100)},
		{VariantID: "b", Quantity: 1, Price: decimal.NewFromInt(50)},
	}
	assert.Equal(t, "250", ItemsTotal(items).String())
	assert.True(t, ItemsTotal(nil).IsZero())
}

func TestOrderItemsScan(t *testing.T) {
	var items OrderItems
	require.NoError(t, items.Scan([]byte(`[{"variant_id":"v1","quantity":3,"price":12.5}]`)))
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "12.5", items[0].Price.String())

	assert.Error(t, items.Scan(42))
}
