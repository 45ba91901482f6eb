package memory

import (
	"context"
	"sort"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

type orderRepo struct{ db *DB }

var _ repository.OrderRepository = (*orderRepo)(nil)

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.customers[order.CustomerID]; !ok {
			return domain.ErrCustomerNotFound
		}
		for _, it := range order.Items {
			if _, ok := t.products[it.ProductID]; !ok {
				return domain.ErrProductNotFound
			}
		}
		order.ID = t.next("orders")
		if order.PlacedAt.IsZero() {
			order.PlacedAt = now()
		}
		if order.PaymentStatus == "" {
			order.PaymentStatus = domain.PaymentPending
		}
		row := *order
		row.Items = nil
		row.Customer = nil
		t.orders[order.ID] = row
		for i := range order.Items {
			order.Items[i].ID = t.next("order_items")
			order.Items[i].OrderID = order.ID
			item := order.Items[i]
			item.Product = nil
			t.orderItems[item.ID] = item
		}
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var out *domain.Order
	err := r.db.read(ctx, func(t *tables) error {
		o, ok := t.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Items = t.orderItemsOf(id)
		out = &o
		return nil
	})
	return out, err
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	out := make([]domain.Order, 0)
	err := r.db.read(ctx, func(t *tables) error {
		for _, o := range t.orders {
			if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
				continue
			}
			o.Items = t.orderItemsOf(o.ID)
			out = append(out, o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id uint64, status domain.PaymentStatus) error {
	return r.db.write(ctx, func(t *tables) error {
		o, ok := t.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.PaymentStatus = status
		t.orders[id] = o
		return nil
	})
}

func (r *orderRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.orders[id]; !ok {
			return domain.ErrOrderNotFound
		}
		delete(t.orders, id)
		for itemID, it := range t.orderItems {
			if it.OrderID == id {
				delete(t.orderItems, itemID)
			}
		}
		return nil
	})
}

func (r *orderRepo) CountByCustomer(ctx context.Context, customerID uint64) (int64, error) {
	var n int64
	err := r.db.read(ctx, func(t *tables) error {
		for _, o := range t.orders {
			if o.CustomerID == customerID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *orderRepo) CountItemsForProduct(ctx context.Context, productID uint64) (int64, error) {
	var n int64
	err := r.db.read(ctx, func(t *tables) error {
		for _, it := range t.orderItems {
			if it.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (t *tables) orderItemsOf(orderID uint64) []domain.OrderItem {
	out := make([]domain.OrderItem, 0)
	for _, it := range t.orderItems {
		if it.OrderID != orderID {
			continue
		}
		if p, ok := t.products[it.ProductID]; ok {
			it.Product = &p
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
