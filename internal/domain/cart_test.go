package domain

import (
	"testing"

	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id int64, price int64, stock int) *Product {
	p := NewProduct("product", price, stock, "", []string{"img"})
	p.ID = id
	return p
}

func TestCart_AddItemMergesDuplicates(t *testing.T) {
	cart := NewCart("user-1")
	p := product(1, 1000, 10)

	require.NoError(t, cart.AddItem(p, 2))

	p.Price = 1200
	require.NoError(t, cart.AddItem(p, 3))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, int64(1200), cart.Items[0].Price, "price is refreshed on merge")
}

func TestCart_AddItemKeepsOrder(t *testing.T) {
	cart := NewCart("user-1")

	require.NoError(t, cart.AddItem(product(3, 100, 5), 1))
	require.NoError(t, cart.AddItem(product(1, 200, 5), 1))
	require.NoError(t, cart.AddItem(product(2, 300, 5), 1))
	require.NoError(t, cart.AddItem(product(1, 200, 5), 1))

	assert.Equal(t, []int64{3, 1, 2}, cart.ProductIDs())
}

func TestCart_AddItemRejectsOverStock(t *testing.T) {
	cart := NewCart("user-1")

	err := cart.AddItem(product(1, 1000, 2), 3)
	assert.ErrorIs(t, err, e.ErrInsufficientStock)
	assert.Empty(t, cart.Items)
}

func TestCart_AddItemChecksRequestedQuantityOnly(t *testing.T) {
	cart := NewCart("user-1")
	p := product(1, 1000, 3)

	require.NoError(t, cart.AddItem(p, 3))
	require.NoError(t, cart.AddItem(p, 2))
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCart_AddItemInvalidQuantity(t *testing.T) {
	cart := NewCart("user-1")
	assert.ErrorIs(t, cart.AddItem(product(1, 100, 10), 0), e.ErrInvalidQuantity)
}

func TestCart_UpdateQuantity(t *testing.T) {
	cart := NewCart("user-1")
	p := product(1, 1000, 10)
	require.NoError(t, cart.AddItem(p, 2))

	tests := []struct {
		name    string
		product *Product
		qty     int
		wantErr error
		wantQty int
	}{
		{name: "overwrite", product: p, qty: 7, wantQty: 7},
		{name: "zero", product: p, qty: 0, wantErr: e.ErrInvalidQuantity, wantQty: 7},
		{name: "over stock", product: p, qty: 11, wantErr: e.ErrInsufficientStock, wantQty: 7},
		{name: "not in cart", product: product(2, 100, 10), qty: 1, wantErr: e.ErrItemNotInCart, wantQty: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cart.UpdateQuantity(tt.product, tt.qty)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantQty, cart.Items[0].Quantity)
		})
	}
}

func TestCart_RemoveClearDeactivate(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddItem(product(1, 100, 10), 1))
	require.NoError(t, cart.AddItem(product(2, 250, 10), 2))

	cart.RemoveItem(1)
	assert.Equal(t, []int64{2}, cart.ProductIDs())

	cart.RemoveItem(42)
	assert.Len(t, cart.Items, 1)

	cart.Clear()
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)

	assert.True(t, cart.IsActive)
	cart.Deactivate()
	assert.False(t, cart.IsActive)
}

func TestCart_Totals(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.AddItem(product(1, 1999, 10), 2))
	require.NoError(t, cart.AddItem(product(2, 500, 10), 3))

	assert.Equal(t, 5, cart.TotalItems())
	assert.Equal(t, int64(1999*2+500*3), cart.TotalPrice())
}
