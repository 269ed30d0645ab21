package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/internal/service"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler handles merchant back-office requests
type AdminHandler struct {
	orderService service.OrderService
	adminService service.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(orderService service.OrderService, adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		orderService: orderService,
		adminService: adminService,
	}
}

// ListOrders returns every order, optionally filtered by ?status=
// GET /admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	status := domain.OrderStatus(c.Query("status"))

	orders, err := h.orderService.ListAll(c.Request.Context(), status)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, dto.NewOrderListResponse(orders))
}

// GetOrder returns any order
// GET /admin/orders/:id
func (h *AdminHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, order)
}

// UpdateOrderStatus moves an order through the workflow
// PUT /admin/orders/:id
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, order)
}

// ExportOrders downloads every order as a spreadsheet
// GET /admin/orders/export
func (h *AdminHandler) ExportOrders(c *gin.Context) {
	buf := &bytes.Buffer{}
	if err := h.adminService.ExportOrders(c.Request.Context(), buf); err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListCustomers returns registered users with order counts
// GET /admin/customers
func (h *AdminHandler) ListCustomers(c *gin.Context) {
	customers, err := h.adminService.ListCustomers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if customers == nil {
		customers = []*domain.Customer{}
	}

	response.SuccessWithMeta(c, customers, gin.H{"total": len(customers)})
}

// Dashboard returns store statistics
// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, stats)
}
