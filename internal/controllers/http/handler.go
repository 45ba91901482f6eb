package http

import (
	"net/http"
	"strconv"

	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
)

// Feed streams live order events to websocket clients.
type Feed interface {
	Serve(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	carts    *services.CartService
	orders   *services.OrderService
	catalog  *services.CatalogService
	assoc    *services.AssociationService
	accounts *services.AccountService
	tokens   TokenParser
	feed     Feed
}

type Services struct {
	Carts        *services.CartService
	Orders       *services.OrderService
	Catalog      *services.CatalogService
	Associations *services.AssociationService
	Accounts     *services.AccountService
}

// NewHandler wires the services into gin handlers. feed may be nil.
func NewHandler(svc Services, tokens TokenParser, feed Feed) *Handler {
	useJSONFieldNames()
	return &Handler{
		carts:    svc.Carts,
		orders:   svc.Orders,
		catalog:  svc.Catalog,
		assoc:    svc.Associations,
		accounts: svc.Accounts,
		tokens:   tokens,
		feed:     feed,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(authenticate(h.tokens))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	a := r.Group("/auth")
	a.POST("/users/", h.Register)
	a.GET("/users/me/", requireAuth, h.Me)
	a.PATCH("/users/me/", requireAuth, h.UpdateMe)
	a.DELETE("/users/:id/", requireStaff, h.DeleteUser)
	a.POST("/jwt/create/", h.Login)

	s := r.Group("/store")

	s.GET("/collections/", h.ListCollections)
	s.POST("/collections/", requireStaff, h.CreateCollection)
	s.GET("/collections/:id/", h.GetCollection)
	s.PUT("/collections/:id/", requireStaff, h.UpdateCollection)
	s.DELETE("/collections/:id/", requireStaff, h.DeleteCollection)
	s.GET("/collections/:id/likes/", h.collectionTarget, h.LikesFor)
	s.GET("/collections/:id/tags/", h.collectionTarget, h.TagsFor)

	s.GET("/products/", h.ListProducts)
	s.POST("/products/", requireStaff, h.CreateProduct)
	s.GET("/products/export/", requireStaff, h.ExportProducts)
	s.GET("/products/:id/", h.GetProduct)
	s.PUT("/products/:id/", requireStaff, h.UpdateProduct)
	s.DELETE("/products/:id/", requireStaff, h.DeleteProduct)
	s.GET("/products/:id/reviews/", h.ListReviews)
	s.POST("/products/:id/reviews/", h.CreateReview)
	s.GET("/products/:id/reviews/:review_id/", h.GetReview)
	s.PUT("/products/:id/reviews/:review_id/", h.UpdateReview)
	s.DELETE("/products/:id/reviews/:review_id/", h.DeleteReview)
	s.GET("/products/:id/images/", h.ListImages)
	s.POST("/products/:id/images/", requireStaff, h.UploadImage)
	s.DELETE("/products/:id/images/:image_id/", requireStaff, h.DeleteImage)
	s.GET("/products/:id/likes/", h.productTarget, h.LikesFor)
	s.GET("/products/:id/tags/", h.productTarget, h.TagsFor)

	s.POST("/carts/", h.CreateCart)
	s.GET("/carts/:cart_id/", h.GetCart)
	s.DELETE("/carts/:cart_id/", h.DeleteCart)
	s.GET("/carts/:cart_id/items/", h.ListCartItems)
	s.POST("/carts/:cart_id/items/", h.AddCartItem)
	s.GET("/carts/:cart_id/items/:item_id/", h.GetCartItem)
	s.PATCH("/carts/:cart_id/items/:item_id/", h.UpdateCartItem)
	s.DELETE("/carts/:cart_id/items/:item_id/", h.RemoveCartItem)

	s.GET("/orders/", requireAuth, h.ListOrders)
	s.POST("/orders/", requireAuth, h.CreateOrder)
	s.GET("/orders/ws", queryToken, authenticate(h.tokens), requireStaff, h.OrderFeed)
	s.GET("/orders/:id/", requireAuth, h.GetOrder)
	s.PATCH("/orders/:id/", requireStaff, h.UpdateOrder)
	s.DELETE("/orders/:id/", requireStaff, h.DeleteOrder)

	s.GET("/customers/", requireStaff, h.ListCustomers)
	s.POST("/customers/", requireStaff, h.CreateCustomer)
	s.GET("/customers/me/", requireAuth, h.GetMyCustomer)
	s.PUT("/customers/me/", requireAuth, h.UpdateMyCustomer)
	s.GET("/customers/:id/", requireStaff, h.GetCustomer)
	s.PUT("/customers/:id/", requireStaff, h.UpdateCustomer)
	s.GET("/customers/:id/history/", requireStaff, h.CustomerHistory)

	s.GET("/likes/me/", requireAuth, h.MyLikes)
	s.POST("/likes/", requireAuth, h.Like)
	s.DELETE("/likes/", requireAuth, h.Unlike)

	s.GET("/tags/", h.ListTags)
	s.POST("/tags/", requireAuth, h.Tag)
	s.DELETE("/tags/", requireAuth, h.Untag)
}

// idParam aborts with 404 when the path segment is not a positive integer.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, bindError(err))
		return false
	}
	return true
}
