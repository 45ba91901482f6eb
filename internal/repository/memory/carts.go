package memory

import (
	"context"
	"sort"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

type cartRepo struct{ db *DB }

var _ repository.CartRepository = (*cartRepo)(nil)

func (r *cartRepo) Create(ctx context.Context, cart *domain.Cart) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.carts[cart.ID]; ok {
			return domain.ErrConflict
		}
		if cart.CreatedAt.IsZero() {
			cart.CreatedAt = now()
		}
		t.carts[cart.ID] = domain.Cart{ID: cart.ID, CreatedAt: cart.CreatedAt}
		return nil
	})
}

func (r *cartRepo) FindByID(ctx context.Context, id string) (*domain.Cart, error) {
	var out *domain.Cart
	err := r.db.read(ctx, func(t *tables) error {
		c, ok := t.carts[id]
		if !ok {
			return domain.ErrCartNotFound
		}
		c.Items = t.itemsOf(id)
		out = &c
		return nil
	})
	return out, err
}

// LockByID relies on the transaction's exclusive lock.
func (r *cartRepo) LockByID(ctx context.Context, id string) (*domain.Cart, error) {
	var out *domain.Cart
	err := r.db.write(ctx, func(t *tables) error {
		c, ok := t.carts[id]
		if !ok {
			return domain.ErrCartNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *cartRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.carts[id]; !ok {
			return domain.ErrCartNotFound
		}
		delete(t.carts, id)
		for itemID, it := range t.cartItems {
			if it.CartID == id {
				delete(t.cartItems, itemID)
			}
		}
		return nil
	})
}

func (r *cartRepo) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	var out []domain.CartItem
	err := r.db.read(ctx, func(t *tables) error {
		out = t.itemsOf(cartID)
		return nil
	})
	return out, err
}

func (r *cartRepo) FindItem(ctx context.Context, cartID string, itemID uint64) (*domain.CartItem, error) {
	var out *domain.CartItem
	err := r.db.read(ctx, func(t *tables) error {
		it, ok := t.cartItems[itemID]
		if !ok || it.CartID != cartID {
			return domain.ErrCartItemNotFound
		}
		it = t.withProduct(it)
		out = &it
		return nil
	})
	return out, err
}

func (r *cartRepo) FindItemByProduct(ctx context.Context, cartID string, productID uint64) (*domain.CartItem, error) {
	var out *domain.CartItem
	err := r.db.read(ctx, func(t *tables) error {
		for _, it := range t.cartItems {
			if it.CartID == cartID && it.ProductID == productID {
				it = t.withProduct(it)
				out = &it
				return nil
			}
		}
		return domain.ErrCartItemNotFound
	})
	return out, err
}

func (r *cartRepo) CreateItem(ctx context.Context, item *domain.CartItem) error {
	return r.db.write(ctx, func(t *tables) error {
		if _, ok := t.carts[item.CartID]; !ok {
			return domain.ErrCartNotFound
		}
		if _, ok := t.products[item.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		for _, it := range t.cartItems {
			if it.CartID == item.CartID && it.ProductID == item.ProductID {
				return domain.ErrCartItemExists
			}
		}
		item.ID = t.next("cart_items")
		row := *item
		row.Product = nil
		t.cartItems[item.ID] = row
		return nil
	})
}

func (r *cartRepo) IncrementItem(ctx context.Context, itemID uint64, delta int) error {
	return r.db.write(ctx, func(t *tables) error {
		it, ok := t.cartItems[itemID]
		if !ok {
			return domain.ErrCartItemNotFound
		}
		it.Quantity += delta
		t.cartItems[itemID] = it
		return nil
	})
}

func (r *cartRepo) SetItemQuantity(ctx context.Context, itemID uint64, quantity int) error {
	return r.db.write(ctx, func(t *tables) error {
		it, ok := t.cartItems[itemID]
		if !ok {
			return domain.ErrCartItemNotFound
		}
		it.Quantity = quantity
		t.cartItems[itemID] = it
		return nil
	})
}

func (r *cartRepo) DeleteItem(ctx context.Context, itemID uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		delete(t.cartItems, itemID)
		return nil
	})
}

func (r *cartRepo) DeleteItemsForProduct(ctx context.Context, productID uint64) error {
	return r.db.write(ctx, func(t *tables) error {
		for id, it := range t.cartItems {
			if it.ProductID == productID {
				delete(t.cartItems, id)
			}
		}
		return nil
	})
}

func (t *tables) itemsOf(cartID string) []domain.CartItem {
	out := make([]domain.CartItem, 0)
	for _, it := range t.cartItems {
		if it.CartID == cartID {
			out = append(out, t.withProduct(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) withProduct(it domain.CartItem) domain.CartItem {
	if p, ok := t.products[it.ProductID]; ok {
		it.Product = &p
	}
	return it
}
