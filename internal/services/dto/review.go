package dto

import "time"

// CreateReviewRequest - product review payload
type CreateReviewRequest struct {
	Rating  int      `json:"rating" validate:"required,min=1,max=5"`
	Comment string   `json:"comment" validate:"omitempty,max=2000"`
	Photos  []string `json:"photos" validate:"omitempty,max=10,dive,url"`
}

// ReviewResponse - review representation
type ReviewResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name,omitempty"`
	ProductID       string    `json:"product_id"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment,omitempty"`
	Photos          []string  `json:"photos,omitempty"`
	IsVerifiedBuyer bool      `json:"is_verified_buyer"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReviewListResponse - paginated reviews for a product
type ReviewListResponse struct {
	Reviews  []ReviewResponse `json:"reviews"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// RatingSummaryResponse - aggregate rating for a product
type RatingSummaryResponse struct {
	ProductID     string  `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}
