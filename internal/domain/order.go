package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "P"
	PaymentComplete PaymentStatus = "C"
	PaymentFailed   PaymentStatus = "F"
)

// ParsePaymentStatus accepts either the stored code ("P") or the long name ("pending").
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pending":
		return PaymentPending, nil
	case "c", "complete":
		return PaymentComplete, nil
	case "f", "failed":
		return PaymentFailed, nil
	default:
		return "", NewValidationError("payment_status", fmt.Sprintf("%q is not a valid choice.", s))
	}
}

type Order struct {
	ID            uint64        `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID    uint64        `json:"customer_id" gorm:"not null;index"`
	Customer      *Customer     `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(1);not null;default:'P'"`
	PlacedAt      time.Time     `json:"placed_at" gorm:"autoCreateTime"`
	Items         []OrderItem   `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Total is computed from the snapshotted unit prices, never from live product prices.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"order_id" gorm:"not null;index"`
	ProductID uint64          `json:"product_id" gorm:"not null;index"`
	Product   *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:RESTRICT"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(6,2);not null"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
