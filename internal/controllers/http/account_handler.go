package http

import (
	"net/http"

	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUser(*u))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Access: token.Access, ExpiresAt: token.ExpiresAt})
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.accounts.Me(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(*u))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.accounts.UpdateMe(c.Request.Context(), actorFrom(c), services.UserUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUser(*u))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.DeleteUser(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.accounts.ListCustomers(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(customers, toCustomer))
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cust, err := h.accounts.GetCustomer(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(*cust))
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.accounts.CreateCustomer(c.Request.Context(), actorFrom(c), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomer(*cust))
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.accounts.UpdateCustomer(c.Request.Context(), actorFrom(c), id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(*cust))
}

func (h *Handler) GetMyCustomer(c *gin.Context) {
	cust, err := h.accounts.GetMyCustomer(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(*cust))
}

func (h *Handler) UpdateMyCustomer(c *gin.Context) {
	var req CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.accounts.UpdateMyCustomer(c.Request.Context(), actorFrom(c), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomer(*cust))
}
