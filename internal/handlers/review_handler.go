package handlers

import (
	"net/http"

	"knotty_backend/internal/middleware"
	"knotty_backend/internal/services"
	"knotty_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService *services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

// RegisterRoutes mounts review reads on the public catalog and writes on
// the authenticated group.
func (h *ReviewHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/products/:id/reviews", h.ListByProduct)
	public.GET("/products/:id/reviews/average", h.RatingSummary)

	protected.POST("/products/:id/reviews", h.CreateReview)
	protected.DELETE("/reviews/:id", h.DeleteReview)
}

func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	reviews, err := h.reviewService.ListByProduct(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) RatingSummary(c *gin.Context) {
	summary, err := h.reviewService.RatingSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req dto.CreateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id"), principal.UserID, principal.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Review deleted"})
}
