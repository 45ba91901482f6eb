package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated         = "order.created"
	EventPaymentStatusChanged = "order.payment_status_changed"
)

type OrderCreatedEvent struct {
	OrderID    uint64          `json:"orderId"`
	CustomerID uint64          `json:"customerId"`
	ItemCount  int             `json:"itemCount"`
	Total      decimal.Decimal `json:"total"`
	PlacedAt   time.Time       `json:"placedAt"`
}

type PaymentStatusChangedEvent struct {
	OrderID   uint64        `json:"orderId"`
	From      PaymentStatus `json:"from"`
	To        PaymentStatus `json:"to"`
	ChangedAt time.Time     `json:"changedAt"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		ItemCount:  len(o.Items),
		Total:      o.Total(),
		PlacedAt:   o.PlacedAt,
	}
}
