package repository

import (
	"context"
	"storefront-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// ExistsEmail reports whether another user already holds the address.
	ExistsEmail(ctx context.Context, email string, exceptID uint64) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id uint64) error
}

type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	FindByID(ctx context.Context, id uint64) (*domain.Customer, error)
	FindByUserID(ctx context.Context, userID uint64) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id uint64) error
}
