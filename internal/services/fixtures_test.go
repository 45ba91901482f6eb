package services

import (
	"context"
	"testing"

	"storefront-service/internal/auth"
	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/memory"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var staff = domain.Actor{UserID: 999, IsStaff: true}

type fixture struct {
	store      repository.Store
	collection *domain.Collection
	customer   *domain.Customer
	shopper    domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	col := &domain.Collection{Title: "Groceries"}
	require.NoError(t, store.Collections.Create(ctx, col))

	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	u := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: hash}
	require.NoError(t, store.Users.Create(ctx, u))
	c := &domain.Customer{UserID: u.ID}
	require.NoError(t, store.Customers.Create(ctx, c))

	return &fixture{
		store:      store,
		collection: col,
		customer:   c,
		shopper:    domain.Actor{UserID: u.ID},
	}
}

func (f *fixture) product(t *testing.T, title, price string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Title:        title,
		Slug:         slug.Make(title),
		UnitPrice:    decimal.RequireFromString(price),
		Inventory:    10,
		CollectionID: f.collection.ID,
	}
	require.NoError(t, f.store.Products.Create(context.Background(), p))
	return p
}

// cart creates a cart holding the given product quantities.
func (f *fixture) cart(t *testing.T, lines map[*domain.Product]int) string {
	t.Helper()
	ctx := context.Background()
	carts := NewCartService(f.store)
	cart, err := carts.CreateCart(ctx)
	require.NoError(t, err)
	for p, qty := range lines {
		_, err := carts.AddItem(ctx, cart.ID, p.ID, qty)
		require.NoError(t, err)
	}
	return cart.ID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func repositoryAll() repository.OrderFilter { return repository.OrderFilter{} }
