package repository

import (
	"context"
	"storefront-service/internal/domain"
)

type OrderFilter struct {
	CustomerID *uint64
}

type OrderRepository interface {
	// Create persists the order and its items; IDs are assigned in place.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uint64, status domain.PaymentStatus) error
	Delete(ctx context.Context, id uint64) error
	CountByCustomer(ctx context.Context, customerID uint64) (int64, error)
	CountItemsForProduct(ctx context.Context, productID uint64) (int64, error)
}
