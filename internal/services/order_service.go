package services

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra/events"
	"storefront-service/internal/repository"
)

const publishTimeout = 2 * time.Second

type OrderService struct {
	tx        repository.TxManager
	carts     repository.CartRepository
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	publisher events.Publisher
	timeout   time.Duration
}

func NewOrderService(store repository.Store, pub events.Publisher) *OrderService {
	return &OrderService{
		tx:        store.Tx,
		carts:     store.Carts,
		orders:    store.Orders,
		products:  store.Products,
		customers: store.Customers,
		publisher: pub,
		timeout:   DefaultTimeout,
	}
}

func (s *OrderService) SetTimeout(d time.Duration) { s.timeout = d }

// CreateOrder resolves the caller's customer profile and places an order from the cart.
func (s *OrderService) CreateOrder(ctx context.Context, actor domain.Actor, cartID string) (*domain.Order, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	customer, err := s.customerFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.PlaceOrder(ctx, customer.ID, cartID)
}

// PlaceOrder converts the cart into an order in one transaction. Unit prices are
// read from the products inside the transaction and copied onto the order items.
// The cart row lock makes a second concurrent call observe the cart as gone.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID uint64, cartID string) (*domain.Order, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var order *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.carts.LockByID(ctx, cartID); err != nil {
			return err
		}
		items, err := s.carts.ListItems(ctx, cartID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrCartEmpty
		}

		ids := make([]uint64, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		prices, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		o := &domain.Order{
			CustomerID:    customerID,
			PaymentStatus: domain.PaymentPending,
			PlacedAt:      time.Now().UTC(),
			Items:         make([]domain.OrderItem, 0, len(items)),
		}
		for _, it := range items {
			p, ok := prices[it.ProductID]
			if !ok {
				return domain.ErrProductNotFound
			}
			o.Items = append(o.Items, domain.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: p.UnitPrice,
			})
		}

		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}
		if err := s.carts.Delete(ctx, cartID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventOrderCreated, domain.NewOrderCreatedEvent(order))
	return order, nil
}

// publish is best effort and runs after commit; it outlives the request context.
func (s *OrderService) publish(ctx context.Context, pattern string, evt any) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	log.Printf("Publishing %s event: %+v", pattern, evt)
	if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
		log.Printf("Failed to publish %s event: %v", pattern, err)
	}
}

func (s *OrderService) SetPaymentStatus(ctx context.Context, actor domain.Actor, orderID uint64, status string) (*domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	next, err := domain.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var (
		order *domain.Order
		prev  domain.PaymentStatus
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		prev = o.PaymentStatus
		if err := s.orders.UpdatePaymentStatus(ctx, orderID, next); err != nil {
			return err
		}
		o.PaymentStatus = next
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if prev != next {
		s.publish(ctx, domain.EventPaymentStatusChanged, domain.PaymentStatusChangedEvent{
			OrderID:   order.ID,
			From:      prev,
			To:        next,
			ChangedAt: time.Now().UTC(),
		})
	}
	return order, nil
}

// ListOrders returns every order to staff and the caller's own orders to everyone else.
func (s *OrderService) ListOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if actor.IsStaff {
		return s.orders.List(ctx, repository.OrderFilter{})
	}
	customer, err := s.customers.FindByUserID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.orders.List(ctx, repository.OrderFilter{CustomerID: &customer.ID})
}

// GetOrder hides orders of other customers behind NotFound.
func (s *OrderService) GetOrder(ctx context.Context, actor domain.Actor, id uint64) (*domain.Order, error) {
	if err := requireAuth(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsStaff {
		return o, nil
	}
	customer, err := s.customers.FindByUserID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if customer.ID != o.CustomerID {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, actor domain.Actor, id uint64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.orders.Delete(ctx, id)
}

// CustomerHistory lists the orders of one customer for staff.
func (s *OrderService) CustomerHistory(ctx context.Context, actor domain.Actor, customerID uint64) ([]domain.Order, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.orders.List(ctx, repository.OrderFilter{CustomerID: &customerID})
}

func (s *OrderService) customerFor(ctx context.Context, actor domain.Actor) (*domain.Customer, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	c, err := s.customers.FindByUserID(ctx, actor.UserID)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, domain.ErrNoCustomerProfile
	}
	return c, err
}
