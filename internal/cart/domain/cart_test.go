package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItem(t *testing.T) {
	cart := &Cart{UserID: 42}

	cart.AddItem(1, 2, decimal.NewFromInt(100))
	cart.AddItem(2, 1, decimal.NewFromInt(50))
	require.Len(t, cart.Items, 2)

	// 重复加购：数量累加，价格刷新为最新快照
	cart.AddItem(1, 1, decimal.NewFromInt(90))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Price.Equal(decimal.NewFromInt(90)))
}

func TestCartSetQuantity(t *testing.T) {
	cart := &Cart{}
	cart.AddItem(1, 2, decimal.NewFromInt(100))

	assert.True(t, cart.SetQuantity(1, 5))
	assert.Equal(t, 5, cart.Items[0].Quantity)

	// qty <= 0 移除条目
	assert.True(t, cart.SetQuantity(1, 0))
	assert.True(t, cart.IsEmpty())

	assert.False(t, cart.SetQuantity(99, 1))
}

func TestCartRemoveItem(t *testing.T) {
	cart := &Cart{}
	cart.AddItem(1, 1, decimal.NewFromInt(100))
	cart.AddItem(2, 1, decimal.NewFromInt(200))

	assert.True(t, cart.RemoveItem(1))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, uint(2), cart.Items[0].ProductID)

	assert.False(t, cart.RemoveItem(1))
}

func TestCartTotal(t *testing.T) {
	cart := &Cart{}
	assert.True(t, cart.Total().IsZero())

	cart.AddItem(1, 2, decimal.RequireFromString("99.90"))
	cart.AddItem(2, 1, decimal.RequireFromString("1800"))
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("1999.80")))
}

func TestCartClear(t *testing.T) {
	cart := &Cart{}
	cart.AddItem(1, 1, decimal.NewFromInt(100))
	require.False(t, cart.IsEmpty())

	cart.Clear()
	assert.True(t, cart.IsEmpty())
}
