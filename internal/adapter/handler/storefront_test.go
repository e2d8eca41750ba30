package handler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/botshop/internal/core/domain"
)

func TestStorefront_AddToCartChecksStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.addProduct(t, "Widget", "5.00", 3)

	cart, err := f.storefront.AddToCart(ctx, "u1", pid, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[pid].Quantity)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("10")))

	_, err = f.storefront.AddToCart(ctx, "u1", pid, 2)
	assert.ErrorIs(t, err, ErrNotEnoughStock)

	_, err = f.storefront.AddToCart(ctx, "u1", "404", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.storefront.AddToCart(ctx, "u1", pid, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStorefront_ConcurrentAddsNeverExceedStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.addProduct(t, "Widget", "1.00", 5)

	var added, refused atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.storefront.AddToCart(ctx, "u1", pid, 1)
			switch {
			case err == nil:
				added.Add(1)
			case assert.ErrorIs(t, err, ErrNotEnoughStock):
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, added.Load())
	assert.EqualValues(t, 15, refused.Load())
	assert.Equal(t, 5, f.storefront.Cart(ctx, "u1").Items[pid].Quantity)
}

func TestStorefront_UpdateItemActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.addProduct(t, "Widget", "5.00", 2)

	_, err := f.storefront.UpdateItem(ctx, "u1", pid, ActionIncrease)
	assert.ErrorIs(t, err, ErrItemNotInCart)

	_, err = f.storefront.AddToCart(ctx, "u1", pid, 1)
	require.NoError(t, err)

	cart, err := f.storefront.UpdateItem(ctx, "u1", pid, ActionIncrease)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[pid].Quantity)

	_, err = f.storefront.UpdateItem(ctx, "u1", pid, ActionIncrease)
	assert.ErrorIs(t, err, ErrMaxStockReached)

	_, err = f.storefront.UpdateItem(ctx, "u1", pid, "explode")
	assert.ErrorIs(t, err, ErrUnknownAction)

	cart, err = f.storefront.UpdateItem(ctx, "u1", pid, ActionDecrease)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[pid].Quantity)

	cart, err = f.storefront.UpdateItem(ctx, "u1", pid, ActionDecrease)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total.IsZero())
}

func TestStorefront_SetQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.addProduct(t, "Widget", "5.00", 4)

	_, err := f.storefront.AddToCart(ctx, "u1", pid, 1)
	require.NoError(t, err)

	_, err = f.storefront.SetQuantity(ctx, "u1", pid, 5)
	assert.ErrorIs(t, err, ErrNotEnoughStock)

	cart, err := f.storefront.SetQuantity(ctx, "u1", pid, 4)
	require.NoError(t, err)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("20")))

	cart, err = f.storefront.SetQuantity(ctx, "u1", pid, 0)
	require.NoError(t, err)
	assert.NotContains(t, cart.Items, pid)
}

func TestStorefront_CheckoutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.addProduct(t, "Widget", "5.00", 10)
	require.NoError(t, f.storefront.RegisterUser(ctx, domain.User{ID: "u1", Username: "alice"}))

	_, err := f.storefront.Checkout(ctx, "req-1", "u1", "1 Main St")
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.storefront.AddToCart(ctx, "u1", pid, 1)
	require.NoError(t, err)

	// The failed attempt released its request id.
	order, err := f.storefront.Checkout(ctx, "req-1", "u1", "1 Main St")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("5")))
	require.NotNil(t, order.UserData)
	assert.Equal(t, "alice", order.UserData.Username)
	assert.True(t, f.storefront.Cart(ctx, "u1").IsEmpty())

	_, err = f.storefront.AddToCart(ctx, "u1", pid, 1)
	require.NoError(t, err)
	_, err = f.storefront.Checkout(ctx, "req-1", "u1", "1 Main St")
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.False(t, f.storefront.Cart(ctx, "u1").IsEmpty())
}

func TestStorefront_OrderScopedToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pid := f.addProduct(t, "Widget", "5.00", 10)

	_, err := f.storefront.AddToCart(ctx, "u1", pid, 1)
	require.NoError(t, err)
	order, err := f.storefront.Checkout(ctx, "", "u1", "addr")
	require.NoError(t, err)

	got, err := f.storefront.Order(ctx, "u1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.storefront.Order(ctx, "u2", order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	page := f.storefront.Orders(ctx, "u1", 1, 3)
	assert.Len(t, page.Items, 1)
	assert.Empty(t, f.storefront.Orders(ctx, "u2", 1, 3).Items)
}
