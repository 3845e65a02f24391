package handlers

// AppHandlers holds every handler in the application.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	ProductHandler *ProductHandler
	OrderHandler   *OrderHandler
	ReviewHandler  *ReviewHandler
}
