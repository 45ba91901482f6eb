package http

import (
	"errors"
	"net/http"

	"storefront-service/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), actorFrom(c), req.CartID)
	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		err = domain.NewValidationError("cart_id", "No cart with the given ID was found.")
	case errors.Is(err, domain.ErrCartEmpty):
		err = domain.NewValidationError("cart_id", "The cart is empty.")
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(*order))
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(orders, toOrder))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*order))
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orders.SetPaymentStatus(c.Request.Context(), actorFrom(c), id, req.PaymentStatus)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(*order))
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// OrderFeed upgrades to a websocket that receives order events.
func (h *Handler) OrderFeed(c *gin.Context) {
	if h.feed == nil {
		writeError(c, domain.ErrUnavailable)
		return
	}
	h.feed.Serve(c.Writer, c.Request)
}

func (h *Handler) CustomerHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	orders, err := h.orders.CustomerHistory(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(orders, toOrder))
}
