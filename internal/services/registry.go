package services

import "knotty_backend/internal/email"

// ServiceContainer holds every service in the application.
type ServiceContainer struct {
	AuthService    *AuthService
	UserService    *UserService
	ProductService *ProductService
	OrderService   *OrderService
	ReviewService  *ReviewService
	EmailService   email.Provider
}
