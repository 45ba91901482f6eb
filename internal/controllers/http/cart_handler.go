package http

import (
	"errors"
	"net/http"

	"storefront-service/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCart(c *gin.Context) {
	cart, err := h.carts.CreateCart(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCart(*cart))
}

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), c.Param("cart_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(*cart))
}

func (h *Handler) DeleteCart(c *gin.Context) {
	if err := h.carts.DeleteCart(c.Request.Context(), c.Param("cart_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCartItems(c *gin.Context) {
	items, err := h.carts.ListItems(c.Request.Context(), c.Param("cart_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(items, toCartItem))
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.carts.AddItem(c.Request.Context(), c.Param("cart_id"), req.ProductID, *req.Quantity)
	if errors.Is(err, domain.ErrProductNotFound) {
		err = domain.NewValidationError("product_id", "No product with the given ID was found.")
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCartItem(*item))
}

func (h *Handler) GetCartItem(c *gin.Context) {
	id, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	item, err := h.carts.GetItem(c.Request.Context(), c.Param("cart_id"), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartItem(*item))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.carts.UpdateItemByID(c.Request.Context(), c.Param("cart_id"), id, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartItem(*item))
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	if err := h.carts.RemoveItemByID(c.Request.Context(), c.Param("cart_id"), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
