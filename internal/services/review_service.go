package services

import (
	"context"
	"encoding/json"
	"errors"

	"knotty_backend/internal/logger"
	"knotty_backend/internal/models"
	"knotty_backend/internal/repositories"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

// ReviewService enforces the verified-buyer rule: only customers with a
// delivered order containing the product may review it, once each.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	orders   repositories.OrderRepository
	products repositories.ProductRepository
}

func NewReviewService(reviews repositories.ReviewRepository, orders repositories.OrderRepository, products repositories.ProductRepository) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		orders:   orders,
		products: products,
	}
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, productID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if _, err := s.products.FindByID(productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	verified, err := s.orders.HasDeliveredOrderWithProduct(userID, productID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !verified {
		return nil, apperrors.ErrNotVerifiedBuyer
	}

	photos, err := photosToJSON(req.Photos)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	review := &models.Review{
		UserID:          userID,
		ProductID:       productID,
		Rating:          req.Rating,
		Comment:         req.Comment,
		Photos:          photos,
		IsVerifiedBuyer: true,
	}

	if err := s.reviews.Create(review); err != nil {
		if errors.Is(err, repositories.ErrReviewExists) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "review created", "review_id", review.ID, "product_id", productID)

	return toReviewResponse(review), nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID string, page, pageSize int) (*dto.ReviewListResponse, error) {
	reviews, total, err := s.reviews.FindByProduct(productID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, *toReviewResponse(&reviews[i]))
	}

	return &dto.ReviewListResponse{
		Reviews:  out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *ReviewService) RatingSummary(ctx context.Context, productID string) (*dto.RatingSummaryResponse, error) {
	if _, err := s.products.FindByID(productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	average, count, err := s.reviews.AverageRating(productID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.RatingSummaryResponse{
		ProductID:     productID,
		AverageRating: average,
		ReviewCount:   count,
	}, nil
}

// DeleteReview removes a review. Owners can remove their own; admins any.
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, requesterID string, requesterRole models.UserRole) error {
	review, err := s.reviews.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrReviewNotFound) {
			return apperrors.NewNotFoundError("Review not found")
		}
		return apperrors.InternalError(err)
	}

	if requesterRole != models.RoleAdmin && review.UserID != requesterID {
		return apperrors.NewForbiddenError("Cannot delete another user's review")
	}

	if err := s.reviews.Delete(reviewID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "review deleted", "review_id", reviewID)
	return nil
}

func photosToJSON(photos []string) (datatypes.JSON, error) {
	if len(photos) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func toReviewResponse(r *models.Review) *dto.ReviewResponse {
	var photos []string
	if len(r.Photos) > 0 {
		_ = json.Unmarshal(r.Photos, &photos)
	}

	out := &dto.ReviewResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		ProductID:       r.ProductID,
		Rating:          r.Rating,
		Comment:         r.Comment,
		Photos:          photos,
		IsVerifiedBuyer: r.IsVerifiedBuyer,
		CreatedAt:       r.CreatedAt,
	}
	if r.User != nil {
		out.UserName = r.User.Name
	}
	return out
}
