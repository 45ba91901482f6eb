package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"storefront-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	tests := []struct {
		name          string
		adds          []int
		badProduct    bool
		badCart       bool
		expectedError error
		expectedQty   int
	}{
		{name: "new line", adds: []int{2}, expectedQty: 2},
		{name: "accumulates", adds: []int{2, 3}, expectedQty: 5},
		{name: "zero quantity", adds: []int{0}, expectedError: domain.ErrInvalidArgument},
		{name: "negative quantity", adds: []int{-1}, expectedError: domain.ErrInvalidArgument},
		{name: "at limit", adds: []int{MaxQuantity - 1, 1}, expectedQty: MaxQuantity},
		{name: "above limit", adds: []int{MaxQuantity + 1}, expectedError: domain.ErrInvalidArgument},
		{name: "max int", adds: []int{math.MaxInt}, expectedError: domain.ErrInvalidArgument},
		{name: "accumulated overflow", adds: []int{MaxQuantity, 1}, expectedError: domain.ErrInvalidArgument},
		{name: "unknown product", adds: []int{1}, badProduct: true, expectedError: domain.ErrProductNotFound},
		{name: "unknown cart", adds: []int{1}, badCart: true, expectedError: domain.ErrCartNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			svc := NewCartService(f.store)
			p := f.product(t, "Tea", "5.00")
			cart, err := svc.CreateCart(ctx)
			require.NoError(t, err)

			cartID, productID := cart.ID, p.ID
			if tt.badCart {
				cartID = "missing"
			}
			if tt.badProduct {
				productID = 777
			}

			var item *domain.CartItem
			for _, q := range tt.adds {
				item, err = svc.AddItem(ctx, cartID, productID, q)
			}
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedQty, item.Quantity)

			items, err := svc.ListItems(ctx, cart.ID)
			require.NoError(t, err)
			assert.Len(t, items, 1)
		})
	}
}

func TestCartService_ConcurrentAddItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCartService(f.store)
	p := f.product(t, "Tea", "5.00")
	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, cart.ID, p.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, workers, got.Items[0].Quantity)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCartService(f.store)
	tea := f.product(t, "Tea", "5.00")
	coffee := f.product(t, "Coffee", "7.50")
	cart, err := svc.CreateCart(ctx)
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, cart.ID, tea.ID, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, cart.ID, tea.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateItem(ctx, cart.ID, coffee.ID, 4)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)

	_, err = svc.UpdateItemByID(ctx, cart.ID, item.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	updated, err = svc.UpdateItemByID(ctx, cart.ID, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)

	got, err := svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, dec("15.00").Equal(got.TotalPrice()))

	require.NoError(t, svc.RemoveItem(ctx, cart.ID, tea.ID))
	require.NoError(t, svc.RemoveItem(ctx, cart.ID, tea.ID), "second remove is a no-op")
	require.NoError(t, svc.RemoveItemByID(ctx, cart.ID, item.ID))
	assert.ErrorIs(t, svc.RemoveItemByID(ctx, "missing", item.ID), domain.ErrCartNotFound)

	items, err := svc.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, svc.DeleteCart(ctx, cart.ID))
	_, err = svc.GetCart(ctx, cart.ID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartService_TotalsFollowLivePrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewCartService(f.store)
	tea := f.product(t, "Tea", "5.00")
	cartID := f.cart(t, map[*domain.Product]int{tea: 2})

	tea.UnitPrice = dec("6.00")
	require.NoError(t, f.store.Products.Update(ctx, tea))

	got, err := svc.GetCart(ctx, cartID)
	require.NoError(t, err)
	assert.True(t, dec("12.00").Equal(got.TotalPrice()))
}
