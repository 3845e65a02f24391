package handlers

import (
	"net/http"

	"knotty_backend/internal/middleware"
	"knotty_backend/internal/models"
	"knotty_backend/internal/services"
	"knotty_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService *services.UserService
}

func NewUserHandler(base *BaseHandler, userService *services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// RegisterRoutes mounts the profile endpoints on the authenticated group
// and the user back office on the admin group.
func (h *UserHandler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	profile := protected.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PATCH("", h.UpdateProfile)
		profile.GET("/customer", h.CustomerDashboard)
		profile.POST("/change-password", h.ChangePassword)

		profile.GET("/addresses", h.ListAddresses)
		profile.POST("/addresses", h.AddAddress)
		profile.DELETE("/addresses/:id", h.DeleteAddress)

		profile.GET("/wishlist", h.GetWishlist)
		profile.POST("/wishlist/:id", h.AddToWishlist)
		profile.DELETE("/wishlist/:id", h.RemoveFromWishlist)
	}

	users := admin.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PATCH("/:id", h.AdminUpdateUser)
		users.PATCH("/:id/active", h.SetActive)
		users.PUT("/:id/role", h.SetRole)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) CustomerDashboard(c *gin.Context) {
	dashboard, err := h.userService.CustomerDashboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password changed"})
}

func (h *UserHandler) ListAddresses(c *gin.Context) {
	addresses, err := h.userService.ListAddresses(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (h *UserHandler) AddAddress(c *gin.Context) {
	var req dto.CreateAddressRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	address, err := h.userService.AddAddress(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *UserHandler) DeleteAddress(c *gin.Context) {
	err := h.userService.DeleteAddress(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Address deleted"})
}

func (h *UserHandler) GetWishlist(c *gin.Context) {
	products, err := h.userService.GetWishlist(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *UserHandler) AddToWishlist(c *gin.Context) {
	err := h.userService.AddToWishlist(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Added to wishlist"})
}

func (h *UserHandler) RemoveFromWishlist(c *gin.Context) {
	err := h.userService.RemoveFromWishlist(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Removed from wishlist"})
}

// Admin operations

func (h *UserHandler) ListUsers(c *gin.Context) {
	var criteria dto.UserSearchCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), &criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	var req dto.AdminUpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.AdminUpdateUser(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetRole(c *gin.Context) {
	var req dto.SetRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.SetRole(c.Request.Context(), c.Param("id"), models.UserRole(req.Role)); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Role updated"})
}

func (h *UserHandler) SetActive(c *gin.Context) {
	var req dto.SetActiveRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User updated"})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted"})
}
