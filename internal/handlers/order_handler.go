package handlers

import (
	"net/http"

	"knotty_backend/internal/middleware"
	"knotty_backend/internal/models"
	"knotty_backend/internal/services"
	"knotty_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	*BaseHandler
	orderService *services.OrderService
}

func NewOrderHandler(base *BaseHandler, orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  base,
		orderService: orderService,
	}
}

// RegisterRoutes mounts customer order endpoints on the authenticated
// group and order management on the admin group.
func (h *OrderHandler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	orders := protected.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
	}

	manage := admin.Group("/orders")
	{
		manage.GET("", h.ListAllOrders)
		manage.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	orders, err := h.orderService.ListMyOrders(c.Request.Context(), middleware.GetUserID(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"), principal.UserID, principal.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Admin operations

func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	orders, err := h.orderService.ListAllOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateOrderStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
