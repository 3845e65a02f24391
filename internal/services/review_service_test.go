package services

import (
	"context"
	"testing"

	"knotty_backend/internal/models"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewFixture(t *testing.T) (*ReviewService, *OrderService, *fakeProductRepo) {
	t.Helper()
	products := newFakeProductRepo()
	orders := newFakeOrderRepo(products)
	reviews := newFakeReviewRepo()
	return NewReviewService(reviews, orders, products), NewOrderService(orders, products, nil), products
}

// buyAndDeliver places an order for the product and marks it delivered.
func buyAndDeliver(t *testing.T, orders *OrderService, userID, productID string) {
	t.Helper()
	out, err := orders.CreateOrder(context.Background(), userID, &dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = orders.UpdateStatus(context.Background(), out.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	_, err = orders.UpdateStatus(context.Background(), out.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
}

func TestCreateReviewRequiresDeliveredOrder(t *testing.T) {
	reviews, orders, products := newReviewFixture(t)
	lampID := seedProduct(t, products, "lamp", 25.0, 10)

	// No order at all.
	_, err := reviews.CreateReview(context.Background(), "u1", lampID, &dto.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotVerifiedBuyer)

	// A pending order is not enough.
	_, err = orders.CreateOrder(context.Background(), "u1", &dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: lampID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = reviews.CreateReview(context.Background(), "u1", lampID, &dto.CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotVerifiedBuyer)
}

func TestCreateReviewHappyPath(t *testing.T) {
	reviews, orders, products := newReviewFixture(t)
	lampID := seedProduct(t, products, "lamp", 25.0, 10)
	buyAndDeliver(t, orders, "u1", lampID)

	out, err := reviews.CreateReview(context.Background(), "u1", lampID, &dto.CreateReviewRequest{
		Rating:  4,
		Comment: "solid lamp",
		Photos:  []string{"https://img.example.com/lamp.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Rating)
	assert.Equal(t, lampID, out.ProductID)
	assert.True(t, out.IsVerifiedBuyer)
	assert.Equal(t, []string{"https://img.example.com/lamp.jpg"}, out.Photos)
}

func TestCreateReviewDuplicateIs409(t *testing.T) {
	reviews, orders, products := newReviewFixture(t)
	lampID := seedProduct(t, products, "lamp", 25.0, 10)
	buyAndDeliver(t, orders, "u1", lampID)

	_, err := reviews.CreateReview(context.Background(), "u1", lampID, &dto.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = reviews.CreateReview(context.Background(), "u1", lampID, &dto.CreateReviewRequest{Rating: 2})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)
}

func TestCreateReviewUnknownProductIs404(t *testing.T) {
	reviews, _, _ := newReviewFixture(t)

	_, err := reviews.CreateReview(context.Background(), "u1", "ghost", &dto.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestRatingSummaryAveragesAcrossBuyers(t *testing.T) {
	reviews, orders, products := newReviewFixture(t)
	lampID := seedProduct(t, products, "lamp", 25.0, 10)

	buyAndDeliver(t, orders, "u1", lampID)
	buyAndDeliver(t, orders, "u2", lampID)

	_, err := reviews.CreateReview(context.Background(), "u1", lampID, &dto.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, err = reviews.CreateReview(context.Background(), "u2", lampID, &dto.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	summary, err := reviews.RatingSummary(context.Background(), lampID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.ReviewCount)
	assert.InDelta(t, 3.5, summary.AverageRating, 1e-9)
}

func TestRatingSummaryEmptyProduct(t *testing.T) {
	reviews, _, products := newReviewFixture(t)
	lampID := seedProduct(t, products, "lamp", 25.0, 10)

	summary, err := reviews.RatingSummary(context.Background(), lampID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.ReviewCount)
	assert.Equal(t, 0.0, summary.AverageRating)
}

func TestDeleteReviewOwnershipRules(t *testing.T) {
	reviews, orders, products := newReviewFixture(t)
	lampID := seedProduct(t, products, "lamp", 25.0, 10)
	buyAndDeliver(t, orders, "u1", lampID)

	out, err := reviews.CreateReview(context.Background(), "u1", lampID, &dto.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	// Another customer cannot delete it.
	err = reviews.DeleteReview(context.Background(), out.ID, "u2", models.RoleCustomer)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	// An admin can.
	err = reviews.DeleteReview(context.Background(), out.ID, "admin1", models.RoleAdmin)
	assert.NoError(t, err)
}
