package services

import (
	"context"
	"errors"

	"knotty_backend/internal/cache"
	"knotty_backend/internal/logger"
	"knotty_backend/internal/models"
	"knotty_backend/internal/repositories"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"
)

// OrderService handles placement and the order lifecycle.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	cache    *cache.Cache
}

func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository, c *cache.Cache) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		cache:    c,
	}
}

// invalidateProducts drops cached entries for products whose stock just
// changed, so catalog reads do not serve stale counts.
func (s *OrderService) invalidateProducts(ctx context.Context, items []models.OrderItem) {
	if s.cache == nil || len(items) == 0 {
		return
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, productCacheKey(item.ProductID))
	}
	s.cache.Invalidate(ctx, keys...)
}

// CreateOrder places an order. Prices are captured from the catalog at
// placement time; stock is decremented transactionally so two orders
// cannot both take the last unit.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	// Collapse duplicate lines for the same product.
	quantities := make(map[string]int)
	for _, item := range req.Items {
		quantities[item.ProductID] += item.Quantity
	}

	var items []models.OrderItem
	var total float64
	for _, item := range req.Items {
		qty, pending := quantities[item.ProductID]
		if !pending {
			continue
		}
		delete(quantities, item.ProductID)

		product, err := s.products.FindByID(item.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrProductNotFound) {
				return nil, apperrors.ErrProductNotFound.WithDetails(map[string]string{
					"product_id": item.ProductID,
				})
			}
			return nil, apperrors.InternalError(err)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  qty,
			UnitPrice: product.Price,
		})
		total += product.Price * float64(qty)
	}

	order := &models.Order{
		UserID:          userID,
		Status:          models.OrderStatusPending,
		Total:           total,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	}

	if err := s.orders.CreateWithStockDecrement(order); err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return nil, apperrors.ErrInsufficientStock
		}
		return nil, apperrors.InternalError(err)
	}

	s.invalidateProducts(ctx, order.Items)

	logger.CtxInfo(ctx, "order placed", "order_id", order.ID, "total", order.Total)

	return toOrderResponse(order), nil
}

// GetOrder returns an order. Customers only see their own; admins see any.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID string, requesterRole models.UserRole) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if requesterRole != models.RoleAdmin && order.UserID != requesterID {
		// Hidden rather than forbidden, so order IDs cannot be probed.
		return nil, apperrors.ErrOrderNotFound
	}

	return toOrderResponse(order), nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page, pageSize int) (*dto.OrderListResponse, error) {
	orders, total, err := s.orders.FindByUser(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toOrderListResponse(orders, total, page, pageSize), nil
}

// Admin operations

func (s *OrderService) ListAllOrders(ctx context.Context, page, pageSize int) (*dto.OrderListResponse, error) {
	orders, total, err := s.orders.FindAll(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toOrderListResponse(orders, total, page, pageSize), nil
}

// UpdateStatus moves an order along its lifecycle. Transitions only go
// forward; cancellation is possible only while the order is pending and
// returns the reserved stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if !models.CanTransition(order.Status, status) {
		return nil, apperrors.ErrInvalidOrderStatus.WithDetails(map[string]string{
			"from": string(order.Status),
			"to":   string(status),
		})
	}

	if err := s.orders.UpdateStatus(orderID, status); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if status == models.OrderStatusCancelled {
		// Cancellation restores stock, so cached product entries are stale.
		s.invalidateProducts(ctx, order.Items)
	}

	logger.CtxInfo(ctx, "order status updated",
		"order_id", orderID, "from", string(order.Status), "to", string(status))

	order.Status = status
	return toOrderResponse(order), nil
}

func toOrderResponse(o *models.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		out := dto.OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice * float64(item.Quantity),
		}
		if item.Product != nil {
			out.ProductName = item.Product.Name
		}
		items = append(items, out)
	}

	return &dto.OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderListResponse(orders []models.Order, total int64, page, pageSize int) *dto.OrderListResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *toOrderResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Orders:   out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
