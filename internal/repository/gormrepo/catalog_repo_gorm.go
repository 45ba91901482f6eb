package gormrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

var productOrdering = map[string]string{
	repository.OrderByPriceAsc:       "unit_price ASC",
	repository.OrderByPriceDesc:      "unit_price DESC",
	repository.OrderByLastUpdateAsc:  "last_update ASC",
	repository.OrderByLastUpdateDesc: "last_update DESC",
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(p).Error, nil)
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	err := conn(ctx, r.db).Preload("Images").First(&p, id).Error
	if err != nil {
		return nil, translate(err, domain.ErrProductNotFound)
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]domain.Product, error) {
	out := make(map[uint64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []domain.Product
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err, nil)
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	p.LastUpdate = time.Now()
	res := conn(ctx, r.db).Model(&domain.Product{ID: p.ID}).Updates(map[string]any{
		"title":         p.Title,
		"slug":          p.Slug,
		"description":   p.Description,
		"unit_price":    p.UnitPrice,
		"inventory":     p.Inventory,
		"collection_id": p.CollectionID,
		"last_update":   p.LastUpdate,
	})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return exists(ctx, r.db, &domain.Product{}, p.ID, domain.ErrProductNotFound)
	}
	return nil
}

// Delete removes dependents that cascade; order items restrict the delete.
func (r *productRepo) Delete(ctx context.Context, id uint64) error {
	db := conn(ctx, r.db)
	for _, model := range []any{&domain.CartItem{}, &domain.ProductImage{}, &domain.Review{}} {
		if err := db.Where("product_id = ?", id).Delete(model).Error; err != nil {
			return translate(err, nil)
		}
	}
	res := db.Delete(&domain.Product{}, id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return domain.ErrProductProtected
	}
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error) {
	q := conn(ctx, r.db).Model(&domain.Product{})
	if f.CollectionID != nil {
		q = q.Where("collection_id = ?", *f.CollectionID)
	}
	if f.PriceGT != nil {
		q = q.Where("unit_price > ?", *f.PriceGT)
	}
	if f.PriceLT != nil {
		q = q.Where("unit_price < ?", *f.PriceLT)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, nil)
	}

	if order, ok := productOrdering[f.Ordering]; ok {
		q = q.Order(order)
	}
	q = q.Order("id")
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	out := make([]domain.Product, 0)
	if err := q.Preload("Images").Find(&out).Error; err != nil {
		return nil, 0, translate(err, nil)
	}
	return out, total, nil
}

func (r *productRepo) CountByCollection(ctx context.Context, collectionID uint64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Product{}).Where("collection_id = ?", collectionID).Count(&n).Error
	return n, translate(err, nil)
}

func (r *productRepo) AddImage(ctx context.Context, img *domain.ProductImage) error {
	return translate(conn(ctx, r.db).Create(img).Error, nil)
}

func (r *productRepo) ListImages(ctx context.Context, productID uint64) ([]domain.ProductImage, error) {
	out := make([]domain.ProductImage, 0)
	err := conn(ctx, r.db).Where("product_id = ?", productID).Order("id").Find(&out).Error
	return out, translate(err, nil)
}

func (r *productRepo) FindImage(ctx context.Context, productID, imageID uint64) (*domain.ProductImage, error) {
	var img domain.ProductImage
	err := conn(ctx, r.db).Where("product_id = ? AND id = ?", productID, imageID).First(&img).Error
	if err != nil {
		return nil, translate(err, domain.ErrImageNotFound)
	}
	return &img, nil
}

func (r *productRepo) DeleteImage(ctx context.Context, imageID uint64) error {
	res := conn(ctx, r.db).Delete(&domain.ProductImage{}, imageID)
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

type collectionRepo struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) repository.CollectionRepository {
	return &collectionRepo{db: db}
}

const withProductsCount = "collections.*, (SELECT COUNT(*) FROM products WHERE products.collection_id = collections.id) AS products_count"

func (r *collectionRepo) Create(ctx context.Context, c *domain.Collection) error {
	return translate(conn(ctx, r.db).Create(c).Error, nil)
}

func (r *collectionRepo) FindByID(ctx context.Context, id uint64) (*domain.Collection, error) {
	var c domain.Collection
	err := conn(ctx, r.db).Select(withProductsCount).First(&c, id).Error
	if err != nil {
		return nil, translate(err, domain.ErrCollectionNotFound)
	}
	return &c, nil
}

func (r *collectionRepo) List(ctx context.Context) ([]domain.Collection, error) {
	out := make([]domain.Collection, 0)
	err := conn(ctx, r.db).Select(withProductsCount).Order("id").Find(&out).Error
	return out, translate(err, nil)
}

func (r *collectionRepo) Update(ctx context.Context, c *domain.Collection) error {
	res := conn(ctx, r.db).Model(&domain.Collection{ID: c.ID}).Updates(map[string]any{
		"title":               c.Title,
		"featured_product_id": c.FeaturedProductID,
	})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return exists(ctx, r.db, &domain.Collection{}, c.ID, domain.ErrCollectionNotFound)
	}
	return nil
}

func (r *collectionRepo) Delete(ctx context.Context, id uint64) error {
	res := conn(ctx, r.db).Delete(&domain.Collection{}, id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return domain.ErrCollectionProtected
	}
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCollectionNotFound
	}
	return nil
}

type reviewRepo struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return translate(conn(ctx, r.db).Create(rv).Error, nil)
}

func (r *reviewRepo) FindByID(ctx context.Context, productID, id uint64) (*domain.Review, error) {
	var rv domain.Review
	err := conn(ctx, r.db).Where("product_id = ? AND id = ?", productID, id).First(&rv).Error
	if err != nil {
		return nil, translate(err, domain.ErrReviewNotFound)
	}
	return &rv, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID uint64) ([]domain.Review, error) {
	out := make([]domain.Review, 0)
	err := conn(ctx, r.db).Where("product_id = ?", productID).Order("id").Find(&out).Error
	return out, translate(err, nil)
}

func (r *reviewRepo) Update(ctx context.Context, rv *domain.Review) error {
	res := conn(ctx, r.db).Model(&domain.Review{ID: rv.ID}).Updates(map[string]any{
		"name":        rv.Name,
		"description": rv.Description,
	})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return exists(ctx, r.db, &domain.Review{}, rv.ID, domain.ErrReviewNotFound)
	}
	return nil
}

func (r *reviewRepo) Delete(ctx context.Context, id uint64) error {
	res := conn(ctx, r.db).Delete(&domain.Review{}, id)
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}
