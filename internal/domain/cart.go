package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// TotalPrice uses the live unit price of each preloaded product.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.TotalPrice())
	}
	return total
}

type CartItem struct {
	ID        uint64   `json:"id" gorm:"primaryKey;autoIncrement"`
	CartID    string   `json:"cart_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product"`
	ProductID uint64   `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_product"`
	Product   *Product `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int      `json:"quantity" gorm:"not null"`
}

func (i CartItem) TotalPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
