package gormrepo

import (
	"context"
	"errors"
	"log"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Create inserts the order and its items in one statement group; callers wrap it
// in a transaction when it has to be atomic with other writes.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	result := conn(ctx, r.db).Omit("Customer").Create(order)
	if result.Error != nil {
		log.Printf("order create error: %v", result.Error)
		return translate(result.Error, nil)
	}
	if order.ID == 0 {
		log.Printf("WARNING: order saved but ID is still 0. Rows affected: %d", result.RowsAffected)
		return errors.New("failed to assign order ID")
	}
	log.Printf("order %d saved with %d items", order.ID, len(order.Items))
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		First(&o, id).Error
	if err != nil {
		return nil, translate(err, domain.ErrOrderNotFound)
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	q := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		Order("id")
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	out := make([]domain.Order, 0)
	if err := q.Find(&out).Error; err != nil {
		log.Printf("order list error: %v", err)
		return nil, translate(err, nil)
	}
	return out, nil
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id uint64, status domain.PaymentStatus) error {
	res := conn(ctx, r.db).Model(&domain.Order{}).Where("id = ?", id).Update("payment_status", status)
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return exists(ctx, r.db, &domain.Order{}, id, domain.ErrOrderNotFound)
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id uint64) error {
	res := conn(ctx, r.db).Select("Items").Delete(&domain.Order{ID: id})
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepo) CountByCustomer(ctx context.Context, customerID uint64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Order{}).Where("customer_id = ?", customerID).Count(&n).Error
	return n, translate(err, nil)
}

func (r *orderRepo) CountItemsForProduct(ctx context.Context, productID uint64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.OrderItem{}).Where("product_id = ?", productID).Count(&n).Error
	return n, translate(err, nil)
}
