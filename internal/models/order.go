package models

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderStatusRank orders the forward-only lifecycle. Cancelled sits
// outside the chain and is only reachable from pending.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusShipped:   1,
	OrderStatusDelivered: 2,
}

// ValidOrderStatus reports whether the value is a known status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderStatusRank[s]
	return ok || s == OrderStatusCancelled
}

// CanTransition reports whether an order may move from one status to
// another. Transitions only move forward; cancellation is allowed only
// while the order is still pending.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if to == OrderStatusCancelled {
		return from == OrderStatusPending
	}
	if from == OrderStatusCancelled {
		return false
	}
	return orderStatusRank[to] > orderStatusRank[from]
}

type Order struct {
	BaseModel
	UserID string      `gorm:"not null;index"`
	User   *User       `gorm:"foreignKey:UserID"`
	Status OrderStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Total  float64     `gorm:"not null"`
	// ShippingAddress is a flattened destination string captured at
	// placement, independent of the user's saved addresses.
	ShippingAddress string

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	BaseModel
	OrderID   string   `gorm:"not null;index"`
	ProductID string   `gorm:"not null;index"`
	Product   *Product `gorm:"foreignKey:ProductID"`
	Quantity  int      `gorm:"not null"`
	// UnitPrice is the product price captured at order time.
	UnitPrice float64 `gorm:"not null"`
}
