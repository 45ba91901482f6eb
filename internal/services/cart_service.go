package services

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
)

type CartService struct {
	tx       repository.TxManager
	carts    repository.CartRepository
	products repository.ProductRepository
	timeout  time.Duration
}

func NewCartService(store repository.Store) *CartService {
	return &CartService{
		tx:       store.Tx,
		carts:    store.Carts,
		products: store.Products,
		timeout:  DefaultTimeout,
	}
}

func (s *CartService) SetTimeout(d time.Duration) { s.timeout = d }

// MaxQuantity bounds a single cart or order line, the range of a SMALLINT column.
const MaxQuantity = 32767

const quantityTooLarge = "Ensure this value is less than or equal to 32767."

func validateQuantity(q int) error {
	if q < 1 {
		return domain.NewValidationError("quantity", "Ensure this value is greater than or equal to 1.")
	}
	if q > MaxQuantity {
		return domain.NewValidationError("quantity", quantityTooLarge)
	}
	return nil
}

func (s *CartService) CreateCart(ctx context.Context) (*domain.Cart, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	cart := &domain.Cart{ID: uuid.NewString(), CreatedAt: time.Now().UTC(), Items: []domain.CartItem{}}
	if err := s.carts.Create(ctx, cart); err != nil {
		log.Printf("cart create error: %v", err)
		return nil, err
	}
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, id string) (*domain.Cart, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.carts.FindByID(ctx, id)
}

func (s *CartService) DeleteCart(ctx context.Context, id string) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.carts.Delete(ctx, id)
}

// AddItem accumulates quantity for a product already in the cart. The cart row lock
// serializes concurrent adds so the read-modify-write never loses an increment.
func (s *CartService) AddItem(ctx context.Context, cartID string, productID uint64, quantity int) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var out *domain.CartItem
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.carts.LockByID(ctx, cartID); err != nil {
			return err
		}
		if _, err := s.products.FindByID(ctx, productID); err != nil {
			return err
		}

		existing, err := s.carts.FindItemByProduct(ctx, cartID, productID)
		switch {
		case err == nil:
			if existing.Quantity > MaxQuantity-quantity {
				return domain.NewValidationError("quantity", quantityTooLarge)
			}
			if err := s.carts.IncrementItem(ctx, existing.ID, quantity); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrCartItemNotFound):
			item := &domain.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
			if err := s.carts.CreateItem(ctx, item); err != nil {
				return err
			}
		default:
			return err
		}

		out, err = s.carts.FindItemByProduct(ctx, cartID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateItem replaces the quantity of the product's line.
func (s *CartService) UpdateItem(ctx context.Context, cartID string, productID uint64, quantity int) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	item, err := s.carts.FindItemByProduct(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	return s.setQuantity(ctx, item, quantity)
}

func (s *CartService) UpdateItemByID(ctx context.Context, cartID string, itemID uint64, quantity int) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.carts.FindByID(ctx, cartID); err != nil {
		return nil, err
	}
	item, err := s.carts.FindItem(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}
	return s.setQuantity(ctx, item, quantity)
}

func (s *CartService) setQuantity(ctx context.Context, item *domain.CartItem, quantity int) (*domain.CartItem, error) {
	if err := s.carts.SetItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// RemoveItem is a no-op when the product is not in the cart.
func (s *CartService) RemoveItem(ctx context.Context, cartID string, productID uint64) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	item, err := s.carts.FindItemByProduct(ctx, cartID, productID)
	if errors.Is(err, domain.ErrCartItemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.carts.DeleteItem(ctx, item.ID)
}

// RemoveItemByID requires the cart to exist; a missing item is a no-op.
func (s *CartService) RemoveItemByID(ctx context.Context, cartID string, itemID uint64) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.carts.FindByID(ctx, cartID); err != nil {
		return err
	}
	item, err := s.carts.FindItem(ctx, cartID, itemID)
	if errors.Is(err, domain.ErrCartItemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.carts.DeleteItem(ctx, item.ID)
}

func (s *CartService) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.carts.FindByID(ctx, cartID); err != nil {
		return nil, err
	}
	return s.carts.ListItems(ctx, cartID)
}

func (s *CartService) GetItem(ctx context.Context, cartID string, itemID uint64) (*domain.CartItem, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.carts.FindByID(ctx, cartID); err != nil {
		return nil, err
	}
	return s.carts.FindItem(ctx, cartID, itemID)
}
