package http

import (
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/services"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}

type CollectionRequest struct {
	Title             string  `json:"title" binding:"required,max=255"`
	FeaturedProductID *uint64 `json:"featured_product_id"`
}

type CollectionResponse struct {
	ID                uint64  `json:"id"`
	Title             string  `json:"title"`
	FeaturedProductID *uint64 `json:"featured_product_id"`
	ProductsCount     int64   `json:"products_count"`
}

func toCollection(c domain.Collection) CollectionResponse {
	return CollectionResponse{
		ID:                c.ID,
		Title:             c.Title,
		FeaturedProductID: c.FeaturedProductID,
		ProductsCount:     c.ProductsCount,
	}
}

type ProductRequest struct {
	Title        string           `json:"title" binding:"required,max=255"`
	Slug         string           `json:"slug" binding:"max=255"`
	Description  string           `json:"description"`
	UnitPrice    *decimal.Decimal `json:"unit_price" binding:"required"`
	Inventory    *int             `json:"inventory" binding:"required"`
	CollectionID uint64           `json:"collection_id" binding:"required"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Title:        r.Title,
		Slug:         r.Slug,
		Description:  r.Description,
		UnitPrice:    *r.UnitPrice,
		Inventory:    *r.Inventory,
		CollectionID: r.CollectionID,
	}
}

type ProductQuery struct {
	CollectionID *uint64 `form:"collection_id"`
	PriceGT      string  `form:"unit_price__gt"`
	PriceLT      string  `form:"unit_price__lt"`
	Search       string  `form:"search"`
	Ordering     string  `form:"ordering"`
	Page         int     `form:"page" binding:"omitempty,min=1"`
	PageSize     int     `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q ProductQuery) query() (services.ProductQuery, error) {
	out := services.ProductQuery{
		CollectionID: q.CollectionID,
		Search:       q.Search,
		Ordering:     q.Ordering,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	v := &domain.ValidationError{}
	for _, f := range []struct {
		name string
		raw  string
		dst  **decimal.Decimal
	}{
		{"unit_price__gt", q.PriceGT, &out.PriceGT},
		{"unit_price__lt", q.PriceLT, &out.PriceLT},
	} {
		if f.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			v.Add(f.name, "Enter a number.")
			continue
		}
		*f.dst = &d
	}
	return out, v.OrNil()
}

type ImageResponse struct {
	ID        uint64 `json:"id"`
	ProductID uint64 `json:"product_id"`
	URL       string `json:"image"`
}

func toImage(img domain.ProductImage) ImageResponse {
	return ImageResponse{ID: img.ID, ProductID: img.ProductID, URL: img.URL}
}

type ProductResponse struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Inventory    int             `json:"inventory"`
	UnitPrice    string          `json:"unit_price"`
	PriceWithTax string          `json:"price_with_tax"`
	CollectionID uint64          `json:"collection_id"`
	LastUpdate   time.Time       `json:"last_update"`
	Images       []ImageResponse `json:"images"`
}

func toProduct(p domain.Product) ProductResponse {
	images := make([]ImageResponse, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, toImage(img))
	}
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		Inventory:    p.Inventory,
		UnitPrice:    money(p.UnitPrice),
		PriceWithTax: money(p.PriceWithTax()),
		CollectionID: p.CollectionID,
		LastUpdate:   p.LastUpdate,
		Images:       images,
	}
}

// SimpleProduct is the product as embedded in cart and order lines.
type SimpleProduct struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
}

type ReviewRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
}

type ReviewResponse struct {
	ID          uint64    `json:"id"`
	ProductID   uint64    `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

func toReview(r domain.Review) ReviewResponse {
	return ReviewResponse{ID: r.ID, ProductID: r.ProductID, Name: r.Name, Description: r.Description, Date: r.Date}
}

type AddCartItemRequest struct {
	ProductID uint64 `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,min=1,max=32767"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=1,max=32767"`
}

type CartItemResponse struct {
	ID         uint64         `json:"id"`
	Product    *SimpleProduct `json:"product"`
	Quantity   int            `json:"quantity"`
	TotalPrice string         `json:"total_price"`
}

func toCartItem(it domain.CartItem) CartItemResponse {
	out := CartItemResponse{ID: it.ID, Quantity: it.Quantity, TotalPrice: money(it.TotalPrice())}
	if it.Product != nil {
		out.Product = &SimpleProduct{ID: it.Product.ID, Title: it.Product.Title, UnitPrice: money(it.Product.UnitPrice)}
	}
	return out
}

type CartResponse struct {
	ID         string             `json:"id"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice string             `json:"total_price"`
}

func toCart(c domain.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, toCartItem(it))
	}
	return CartResponse{ID: c.ID, Items: items, TotalPrice: money(c.TotalPrice())}
}

type CreateOrderRequest struct {
	CartID string `json:"cart_id" binding:"required"`
}

type UpdateOrderRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

type OrderItemResponse struct {
	ID        uint64 `json:"id"`
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type OrderResponse struct {
	ID            uint64               `json:"id"`
	CustomerID    uint64               `json:"customer_id"`
	PlacedAt      time.Time            `json:"placed_at"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Items         []OrderItemResponse  `json:"items"`
	Total         string               `json:"total"`
}

func toOrder(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			Subtotal:  money(it.Subtotal()),
		})
	}
	return OrderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		PlacedAt:      o.PlacedAt,
		PaymentStatus: o.PaymentStatus,
		Items:         items,
		Total:         money(o.Total()),
	}
}

type CustomerRequest struct {
	UserID     uint64 `json:"user_id"`
	Phone      string `json:"phone" binding:"max=255"`
	BirthDate  *Date  `json:"birth_date"`
	Membership string `json:"membership"`
}

func (r CustomerRequest) input() services.CustomerInput {
	in := services.CustomerInput{UserID: r.UserID, Phone: r.Phone, Membership: r.Membership}
	if r.BirthDate != nil {
		t := time.Time(*r.BirthDate)
		in.BirthDate = &t
	}
	return in
}

// Date is a calendar date in YYYY-MM-DD form.
type Date time.Time

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	t, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return domain.NewValidationError("birth_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	*d = Date(t)
	return nil
}

type CustomerResponse struct {
	ID         uint64            `json:"id"`
	UserID     uint64            `json:"user_id"`
	Phone      string            `json:"phone"`
	BirthDate  *string           `json:"birth_date"`
	Membership domain.Membership `json:"membership"`
}

func toCustomer(c domain.Customer) CustomerResponse {
	out := CustomerResponse{ID: c.ID, UserID: c.UserID, Phone: c.Phone, Membership: c.Membership}
	if c.BirthDate != nil {
		s := time.Time(*c.BirthDate).Format(time.DateOnly)
		out.BirthDate = &s
	}
	return out
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

type UpdateMeRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

type UserResponse struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func toUser(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TargetRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	ObjectID    uint64 `json:"object_id" binding:"required"`
}

func (r TargetRequest) ref() (domain.EntityRef, error) {
	kind, err := domain.ParseEntityKind(r.ContentType)
	if err != nil {
		return domain.EntityRef{}, err
	}
	return domain.EntityRef{Kind: kind, ID: r.ObjectID}, nil
}

type TagRequest struct {
	TargetRequest
	Label string `json:"label" binding:"required,max=255"`
}

type AssociationResponse struct {
	ID          uint64            `json:"id"`
	Label       string            `json:"label,omitempty"`
	UserID      uint64            `json:"user_id,omitempty"`
	ContentType domain.EntityKind `json:"content_type"`
	ObjectID    uint64            `json:"object_id"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toTagged(a domain.Association) AssociationResponse {
	return AssociationResponse{ID: a.ID, Label: a.Label, ContentType: a.Target.Kind, ObjectID: a.Target.ID, CreatedAt: a.CreatedAt}
}

func toLiked(a domain.Association) AssociationResponse {
	return AssociationResponse{ID: a.ID, UserID: a.ActorID, ContentType: a.Target.Kind, ObjectID: a.Target.ID, CreatedAt: a.CreatedAt}
}

func mapAll[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
