package dto

import "time"

// CreateProductRequest - admin catalog entry
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Category    string   `json:"category" validate:"omitempty,max=100"`
	Color       string   `json:"color" validate:"omitempty,max=50"`
	Size        string   `json:"size" validate:"omitempty,max=50"`
	Shape       string   `json:"shape" validate:"omitempty,max=50"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
}

// UpdateProductRequest - partial catalog update
type UpdateProductRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Color       *string   `json:"color,omitempty" validate:"omitempty,max=50"`
	Size        *string   `json:"size,omitempty" validate:"omitempty,max=50"`
	Shape       *string   `json:"shape,omitempty" validate:"omitempty,max=50"`
	Images      *[]string `json:"images,omitempty" validate:"omitempty,dive,url"`
}

// ProductSearchCriteria - catalog listing filters
type ProductSearchCriteria struct {
	Category string   `form:"category" validate:"omitempty,max=100"`
	Search   string   `form:"search" validate:"omitempty,max=200"`
	MinPrice *float64 `form:"min_price" validate:"omitempty,gte=0"`
	MaxPrice *float64 `form:"max_price" validate:"omitempty,gte=0"`
	InStock  bool     `form:"in_stock"`
	Page     int      `form:"page" validate:"omitempty,min=1"`
	PageSize int      `form:"page_size" validate:"omitempty,min=1,max=100"`
}

// ProductResponse - catalog entry representation
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category,omitempty"`
	Color       string    `json:"color,omitempty"`
	Size        string    `json:"size,omitempty"`
	Shape       string    `json:"shape,omitempty"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductListResponse - paginated catalog listing
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
