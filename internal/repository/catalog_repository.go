package repository

import (
	"context"
	"storefront-service/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	OrderByPriceAsc       = "unit_price"
	OrderByPriceDesc      = "-unit_price"
	OrderByLastUpdateAsc  = "last_update"
	OrderByLastUpdateDesc = "-last_update"
)

type ProductFilter struct {
	CollectionID *uint64
	PriceGT      *decimal.Decimal
	PriceLT      *decimal.Decimal
	Search       string
	Ordering     string
	Offset       int
	Limit        int
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	// FindByIDs returns the products that exist, keyed by id.
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id uint64) error
	// List returns one page and the total number of matches.
	List(ctx context.Context, f ProductFilter) ([]domain.Product, int64, error)
	CountByCollection(ctx context.Context, collectionID uint64) (int64, error)

	AddImage(ctx context.Context, img *domain.ProductImage) error
	ListImages(ctx context.Context, productID uint64) ([]domain.ProductImage, error)
	FindImage(ctx context.Context, productID, imageID uint64) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, imageID uint64) error
}

type CollectionRepository interface {
	Create(ctx context.Context, c *domain.Collection) error
	// FindByID and List fill ProductsCount.
	FindByID(ctx context.Context, id uint64) (*domain.Collection, error)
	List(ctx context.Context) ([]domain.Collection, error)
	Update(ctx context.Context, c *domain.Collection) error
	Delete(ctx context.Context, id uint64) error
}

type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	FindByID(ctx context.Context, productID, id uint64) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error)
	Update(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id uint64) error
}
