package gormrepo

import (
	"context"
	"errors"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func itemsByID(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }

func (r *cartRepo) Create(ctx context.Context, cart *domain.Cart) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(cart).Error, nil)
}

func (r *cartRepo) FindByID(ctx context.Context, id string) (*domain.Cart, error) {
	var c domain.Cart
	err := conn(ctx, r.db).
		Preload("Items", itemsByID).
		Preload("Items.Product").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrCartNotFound)
	}
	return &c, nil
}

func (r *cartRepo) LockByID(ctx context.Context, id string) (*domain.Cart, error) {
	var c domain.Cart
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrCartNotFound)
	}
	return &c, nil
}

func (r *cartRepo) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Select("Items").Delete(&domain.Cart{ID: id})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

func (r *cartRepo) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	out := make([]domain.CartItem, 0)
	err := conn(ctx, r.db).Preload("Product").Where("cart_id = ?", cartID).Order("id").Find(&out).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return out, nil
}

func (r *cartRepo) FindItem(ctx context.Context, cartID string, itemID uint64) (*domain.CartItem, error) {
	var it domain.CartItem
	err := conn(ctx, r.db).Preload("Product").Where("cart_id = ? AND id = ?", cartID, itemID).First(&it).Error
	if err != nil {
		return nil, translate(err, domain.ErrCartItemNotFound)
	}
	return &it, nil
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID string, productID uint64) (*domain.CartItem, error) {
	var it domain.CartItem
	err := conn(ctx, r.db).Preload("Product").Where("cart_id = ? AND product_id = ?", cartID, productID).First(&it).Error
	if err != nil {
		return nil, translate(err, domain.ErrCartItemNotFound)
	}
	return &it, nil
}

func (r *cartRepo) CreateItem(ctx context.Context, item *domain.CartItem) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrCartItemExists
	}
	return translate(err, nil)
}

func (r *cartRepo) IncrementItem(ctx context.Context, itemID uint64, delta int) error {
	res := conn(ctx, r.db).Model(&domain.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepo) SetItemQuantity(ctx context.Context, itemID uint64, quantity int) error {
	res := conn(ctx, r.db).Model(&domain.CartItem{}).Where("id = ?", itemID).UpdateColumn("quantity", quantity)
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return exists(ctx, r.db, &domain.CartItem{}, itemID, domain.ErrCartItemNotFound)
	}
	return nil
}

func (r *cartRepo) DeleteItem(ctx context.Context, itemID uint64) error {
	return translate(conn(ctx, r.db).Delete(&domain.CartItem{}, itemID).Error, nil)
}

func (r *cartRepo) DeleteItemsForProduct(ctx context.Context, productID uint64) error {
	return translate(conn(ctx, r.db).Where("product_id = ?", productID).Delete(&domain.CartItem{}).Error, nil)
}

// exists resolves the zero-rows-affected ambiguity of MySQL updates that write an unchanged value.
func exists(ctx context.Context, db *gorm.DB, model any, id uint64, notFound error) error {
	var n int64
	if err := conn(ctx, db).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err, nil)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
