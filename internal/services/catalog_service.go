package services

import (
	"context"
	"log"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/infra/storage"
	"storefront-service/internal/repository"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var maxUnitPrice = decimal.RequireFromString("9999.99")

type CatalogService struct {
	tx          repository.TxManager
	products    repository.ProductRepository
	collections repository.CollectionRepository
	reviews     repository.ReviewRepository
	orders      repository.OrderRepository
	carts       repository.CartRepository
	tagged      repository.AssociationStore
	liked       repository.AssociationStore
	cache       *cache.ProductCache
	images      storage.ImageStore
	timeout     time.Duration
}

func NewCatalogService(store repository.Store, productCache *cache.ProductCache, images storage.ImageStore) *CatalogService {
	return &CatalogService{
		tx:          store.Tx,
		products:    store.Products,
		collections: store.Collections,
		reviews:     store.Reviews,
		orders:      store.Orders,
		carts:       store.Carts,
		tagged:      store.TaggedItems,
		liked:       store.LikedItems,
		cache:       productCache,
		images:      images,
		timeout:     DefaultTimeout,
	}
}

func (s *CatalogService) SetTimeout(d time.Duration) { s.timeout = d }

type ProductQuery struct {
	CollectionID *uint64
	PriceGT      *decimal.Decimal
	PriceLT      *decimal.Decimal
	Search       string
	Ordering     string
	Page         int
	PageSize     int
}

type ProductPage struct {
	Count   int64
	Results []domain.Product
}

type ProductInput struct {
	Title        string
	Slug         string
	Description  string
	UnitPrice    decimal.Decimal
	Inventory    int
	CollectionID uint64
}

func (in *ProductInput) validate() error {
	v := &domain.ValidationError{}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		v.Add("title", "This field may not be blank.")
	}
	if in.UnitPrice.IsNegative() {
		v.Add("unit_price", "Ensure this value is greater than or equal to 0.")
	} else if in.UnitPrice.GreaterThan(maxUnitPrice) {
		v.Add("unit_price", "Ensure that there are no more than 6 digits in total.")
	} else if !in.UnitPrice.Equal(in.UnitPrice.Round(2)) {
		v.Add("unit_price", "Ensure that there are no more than 2 decimal places.")
	}
	if in.Inventory < 0 {
		v.Add("inventory", "Ensure this value is greater than or equal to 0.")
	}
	if in.CollectionID == 0 {
		v.Add("collection_id", "This field is required.")
	}
	if in.Slug == "" {
		in.Slug = slug.Make(in.Title)
	}
	return v.OrNil()
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page := max(q.Page, 1)
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)
	switch q.Ordering {
	case "", repository.OrderByPriceAsc, repository.OrderByPriceDesc,
		repository.OrderByLastUpdateAsc, repository.OrderByLastUpdateDesc:
	default:
		return nil, domain.NewValidationError("ordering", "Select a valid choice.")
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	results, total, err := s.products.List(ctx, repository.ProductFilter{
		CollectionID: q.CollectionID,
		PriceGT:      q.PriceGT,
		PriceLT:      q.PriceLT,
		Search:       q.Search,
		Ordering:     q.Ordering,
		Offset:       (page - 1) * size,
		Limit:        size,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Count: total, Results: results}, nil
}

// GetProduct serves catalog reads through the product cache.
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.cache.Get(ctx, id, func(ctx context.Context) (*domain.Product, error) {
		return s.products.FindByID(ctx, id)
	})
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor domain.Actor, in ProductInput) (*domain.Product, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := s.requireCollection(ctx, in.CollectionID); err != nil {
		return nil, err
	}
	p := &domain.Product{
		Title:        in.Title,
		Slug:         in.Slug,
		Description:  in.Description,
		UnitPrice:    in.UnitPrice,
		Inventory:    in.Inventory,
		CollectionID: in.CollectionID,
		Images:       []domain.ProductImage{},
	}
	if err := s.products.Create(ctx, p); err != nil {
		log.Printf("product create error: %v", err)
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor domain.Actor, id uint64, in ProductInput) (*domain.Product, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := s.requireCollection(ctx, in.CollectionID); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Title, p.Slug, p.Description = in.Title, in.Slug, in.Description
	p.UnitPrice, p.Inventory, p.CollectionID = in.UnitPrice, in.Inventory, in.CollectionID
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return p, nil
}

// DeleteProduct is refused while order items reference the product. Otherwise the
// product, its tags, likes, cart lines, reviews and images go in one transaction.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor domain.Actor, id uint64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var images []domain.ProductImage
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.FindByID(ctx, id); err != nil {
			return err
		}
		n, err := s.orders.CountItemsForProduct(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrProductProtected
		}
		if images, err = s.products.ListImages(ctx, id); err != nil {
			return err
		}
		target := domain.EntityRef{Kind: domain.EntityProduct, ID: id}
		if err := s.tagged.DeleteForEntity(ctx, target); err != nil {
			return err
		}
		if err := s.liked.DeleteForEntity(ctx, target); err != nil {
			return err
		}
		if err := s.carts.DeleteItemsForProduct(ctx, id); err != nil {
			return err
		}
		return s.products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id)
	s.removeObjects(ctx, images)
	return nil
}

func (s *CatalogService) requireCollection(ctx context.Context, id uint64) error {
	if _, err := s.collections.FindByID(ctx, id); err != nil {
		if errorsIsNotFound(err) {
			return domain.NewValidationError("collection_id", "Invalid pk - object does not exist.")
		}
		return err
	}
	return nil
}

// WarmProductCache preloads the first page of products.
func (s *CatalogService) WarmProductCache(ctx context.Context, limit int) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	products, _, err := s.products.List(ctx, repository.ProductFilter{Limit: limit})
	if err != nil {
		return err
	}
	s.cache.Warm(ctx, products)
	return nil
}

type CollectionInput struct {
	Title             string
	FeaturedProductID *uint64
}

func (in *CollectionInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.NewValidationError("title", "This field may not be blank.")
	}
	return nil
}

func (s *CatalogService) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.collections.List(ctx)
}

func (s *CatalogService) GetCollection(ctx context.Context, id uint64) (*domain.Collection, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.collections.FindByID(ctx, id)
}

func (s *CatalogService) CreateCollection(ctx context.Context, actor domain.Actor, in CollectionInput) (*domain.Collection, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := s.requireFeatured(ctx, in.FeaturedProductID); err != nil {
		return nil, err
	}
	c := &domain.Collection{Title: in.Title, FeaturedProductID: in.FeaturedProductID}
	if err := s.collections.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCollection(ctx context.Context, actor domain.Actor, id uint64, in CollectionInput) (*domain.Collection, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := s.requireFeatured(ctx, in.FeaturedProductID); err != nil {
		return nil, err
	}
	c, err := s.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Title, c.FeaturedProductID = in.Title, in.FeaturedProductID
	if err := s.collections.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCollection is refused while the collection still holds products.
func (s *CatalogService) DeleteCollection(ctx context.Context, actor domain.Actor, id uint64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.collections.FindByID(ctx, id); err != nil {
			return err
		}
		n, err := s.products.CountByCollection(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrCollectionProtected
		}
		target := domain.EntityRef{Kind: domain.EntityCollection, ID: id}
		if err := s.tagged.DeleteForEntity(ctx, target); err != nil {
			return err
		}
		if err := s.liked.DeleteForEntity(ctx, target); err != nil {
			return err
		}
		return s.collections.Delete(ctx, id)
	})
}

func (s *CatalogService) requireFeatured(ctx context.Context, id *uint64) error {
	if id == nil {
		return nil
	}
	if _, err := s.products.FindByID(ctx, *id); err != nil {
		if errorsIsNotFound(err) {
			return domain.NewValidationError("featured_product_id", "Invalid pk - object does not exist.")
		}
		return err
	}
	return nil
}
