package repositories

import (
	"errors"
	"time"

	"knotty_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type OrderRepository interface {
	// CreateWithStockDecrement persists the order and decrements stock for
	// every line inside one transaction. It fails with ErrInsufficientStock
	// when any line cannot be covered, leaving all stock untouched.
	CreateWithStockDecrement(order *models.Order) error

	FindByID(id string) (*models.Order, error)
	FindByUser(userID string, limit, offset int) ([]models.Order, int64, error)
	FindAll(limit, offset int) ([]models.Order, int64, error)

	// UpdateStatus moves the order to the new status and restores stock
	// when the order is cancelled.
	UpdateStatus(orderID string, status models.OrderStatus) error

	// HasDeliveredOrderWithProduct reports whether the user has a delivered
	// order containing the product.
	HasDeliveredOrderWithProduct(userID, productID string) (bool, error)
}

type OrderRepositoryImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

func (r *OrderRepositoryImpl) CreateWithStockDecrement(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			// Conditional decrement: the WHERE clause guards against
			// oversell under concurrent placement.
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		return tx.Create(order).Error
	})
}

func (r *OrderRepositoryImpl) FindByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Items.Product").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) FindByUser(userID string, limit, offset int) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items").Preload("Items.Product").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *OrderRepositoryImpl) FindAll(limit, offset int) ([]models.Order, int64, error) {
	var orders []models.Order

	var total int64
	if err := r.db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("Items").Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *OrderRepositoryImpl) UpdateStatus(orderID string, status models.OrderStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		if status != models.OrderStatusCancelled {
			return nil
		}

		// Cancellation returns reserved stock to the shelf.
		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *OrderRepositoryImpl) HasDeliveredOrderWithProduct(userID, productID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, models.OrderStatusDelivered, productID).
		Count(&count).Error
	return count > 0, err
}
