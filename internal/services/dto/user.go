package dto

import "time"

// UpdateProfileRequest - partial account update
type UpdateProfileRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Age                *int    `json:"age,omitempty" validate:"omitempty,gte=18,lte=100"`
	PhoneNumber        *string `json:"phone_number,omitempty" validate:"omitempty,max=30"`
	ProfileImage       *string `json:"profile_image,omitempty" validate:"omitempty,url"`
	Newsletter         *bool   `json:"newsletter,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
}

// ChangePasswordRequest - authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// CreateAddressRequest - new shipping address
type CreateAddressRequest struct {
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	IsDefault  bool   `json:"is_default"`
}

// AddressResponse - shipping address representation
type AddressResponse struct {
	ID         string    `json:"id"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserSearchCriteria - admin user listing filters
type UserSearchCriteria struct {
	Role     string `form:"role" validate:"omitempty,is-user-role"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// SetActiveRequest - admin account activation toggle
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// SetRoleRequest - admin role change
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,is-user-role"`
}

// AdminUpdateUserRequest - admin partial account edit
type AdminUpdateUserRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Age         *int    `json:"age,omitempty" validate:"omitempty,gte=18,lte=100"`
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=30"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CustomerDashboardResponse - profile plus wishlist and recent orders
type CustomerDashboardResponse struct {
	User         UserDTO           `json:"user"`
	Wishlist     []ProductResponse `json:"wishlist"`
	RecentOrders []OrderResponse   `json:"recent_orders"`
}

// UserListResponse - paginated user listing
type UserListResponse struct {
	Users    []UserDTO `json:"users"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
