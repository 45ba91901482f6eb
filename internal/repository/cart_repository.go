package repository

import (
	"context"
	"storefront-service/internal/domain"
)

type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) error
	// FindByID returns the cart with its items and their products.
	FindByID(ctx context.Context, id string) (*domain.Cart, error)
	// LockByID takes a row lock on the cart for the rest of the transaction.
	LockByID(ctx context.Context, id string) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error

	ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error)
	FindItem(ctx context.Context, cartID string, itemID uint64) (*domain.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID string, productID uint64) (*domain.CartItem, error)
	// CreateItem fails with domain.ErrCartItemExists when the product is already in the cart.
	CreateItem(ctx context.Context, item *domain.CartItem) error
	IncrementItem(ctx context.Context, itemID uint64, delta int) error
	SetItemQuantity(ctx context.Context, itemID uint64, quantity int) error
	DeleteItem(ctx context.Context, itemID uint64) error
	DeleteItemsForProduct(ctx context.Context, productID uint64) error
}
