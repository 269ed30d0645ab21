package handler

import (
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/internal/middleware"
	"github.com/Bronny721/nadu-website/internal/service"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles customer order requests
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder places an order for the caller
// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, order)
}

// ListOrders returns the caller's orders
// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
		return
	}

	orders, err := h.orderService.ListForUser(c.Request.Context(), identity.UserID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewOrderListResponse(orders))
}

// GetOrder returns one of the caller's orders; other users' orders are reported as missing
// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetForUser(c.Request.Context(), identity.UserID, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, order)
}
