package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var taxMultiplier = decimal.RequireFromString("1.1")

type Collection struct {
	ID                uint64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title             string  `json:"title" gorm:"size:255;not null"`
	FeaturedProductID *uint64 `json:"featured_product_id"`
	ProductsCount     int64   `json:"products_count" gorm:"->;-:migration"`
}

type Product struct {
	ID           uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Title        string          `json:"title" gorm:"size:255;not null"`
	Slug         string          `json:"slug" gorm:"size:255;index"`
	Description  string          `json:"description" gorm:"type:text"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:decimal(6,2);not null"`
	Inventory    int             `json:"inventory" gorm:"not null;default:0"`
	LastUpdate   time.Time       `json:"last_update" gorm:"autoUpdateTime"`
	CollectionID uint64          `json:"collection_id" gorm:"not null;index"`
	Collection   *Collection     `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	Images       []ProductImage  `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews      []Review        `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p Product) PriceWithTax() decimal.Decimal {
	return p.UnitPrice.Mul(taxMultiplier).Round(2)
}

type ProductImage struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint64 `json:"product_id" gorm:"not null;index"`
	URL       string `json:"url" gorm:"size:1024;not null"`
	Key       string `json:"-" gorm:"size:512"`
}

// MaxImageSize is the upload limit for a single product image.
const MaxImageSize = 1100 * 1024

type Review struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID   uint64    `json:"product_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Date        time.Time `json:"date" gorm:"autoCreateTime"`
}
