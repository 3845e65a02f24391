package services

import (
	"context"
	"errors"

	"knotty_backend/internal/auth"
	"knotty_backend/internal/logger"
	"knotty_backend/internal/models"
	"knotty_backend/internal/repositories"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"
)

// UserService covers profile management, shipping addresses, the
// wishlist, and the admin user back office.
type UserService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
}

func NewUserService(users repositories.UserRepository, products repositories.ProductRepository, orders repositories.OrderRepository) *UserService {
	return &UserService{
		users:    users,
		products: products,
		orders:   orders,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*dto.UserDTO, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	out := dto.ToUserDTO(user)
	return &out, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserDTO, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = *req.PhoneNumber
	}
	if req.ProfileImage != nil {
		fields["profile_image"] = *req.ProfileImage
	}
	if req.Newsletter != nil {
		fields["newsletter"] = *req.Newsletter
	}
	if req.EmailNotifications != nil {
		fields["email_notifications"] = *req.EmailNotifications
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfile(userID, fields); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.InternalError(err)
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.users.SetPassword(userID, hash); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password changed", "user_id", userID)
	return nil
}

// Shipping addresses

func (s *UserService) AddAddress(ctx context.Context, userID string, req *dto.CreateAddressRequest) (*dto.AddressResponse, error) {
	address := &models.ShippingAddress{
		UserID:     userID,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}

	if err := s.users.CreateAddress(address); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return toAddressResponse(address), nil
}

func (s *UserService) ListAddresses(ctx context.Context, userID string) ([]dto.AddressResponse, error) {
	addresses, err := s.users.ListAddresses(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.AddressResponse, 0, len(addresses))
	for i := range addresses {
		out = append(out, *toAddressResponse(&addresses[i]))
	}
	return out, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	err := s.users.DeleteAddress(userID, addressID)
	if err != nil {
		if errors.Is(err, repositories.ErrAddressNotFound) {
			return apperrors.NewNotFoundError("Shipping address not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// Wishlist

func (s *UserService) AddToWishlist(ctx context.Context, userID, productID string) error {
	if _, err := s.products.FindByID(productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return apperrors.ErrProductNotFound
		}
		return apperrors.InternalError(err)
	}

	if err := s.users.AddToWishlist(userID, productID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	if err := s.users.RemoveFromWishlist(userID, productID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *UserService) GetWishlist(ctx context.Context, userID string) ([]dto.ProductResponse, error) {
	products, err := s.users.GetWishlist(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *toProductResponse(&products[i]))
	}
	return out, nil
}

// CustomerDashboard bundles the profile with the wishlist and the ten
// most recent orders.
func (s *UserService) CustomerDashboard(ctx context.Context, userID string) (*dto.CustomerDashboardResponse, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders, _, err := s.orders.FindByUser(userID, 10, 0)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	recent := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		recent = append(recent, *toOrderResponse(&orders[i]))
	}

	return &dto.CustomerDashboardResponse{
		User:         *profile,
		Wishlist:     wishlist,
		RecentOrders: recent,
	}, nil
}

// Admin operations

func (s *UserService) GetUser(ctx context.Context, userID string) (*dto.UserDTO, error) {
	return s.GetProfile(ctx, userID)
}

func (s *UserService) AdminUpdateUser(ctx context.Context, userID string, req *dto.AdminUpdateUserRequest) (*dto.UserDTO, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = *req.PhoneNumber
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) > 0 {
		if err := s.users.UpdateProfile(userID, fields); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.InternalError(err)
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *UserService) SetRole(ctx context.Context, userID string, role models.UserRole) error {
	if !models.ValidRole(role) {
		return apperrors.ErrInvalidUserRole
	}

	if err := s.users.SetRole(userID, role); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user role changed", "target_user_id", userID, "role", role)
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, criteria *dto.UserSearchCriteria) (*dto.UserListResponse, error) {
	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	users, total, err := s.users.FindWithFilter(repositories.UserFilter{
		Role:     models.UserRole(criteria.Role),
		IsActive: criteria.IsActive,
		Search:   criteria.Search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, dto.ToUserDTO(&users[i]))
	}

	return &dto.UserListResponse{
		Users:    out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	if err := s.users.SetActive(userID, active); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user activation changed", "target_user_id", userID, "is_active", active)
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user deleted", "target_user_id", userID)
	return nil
}

func toAddressResponse(a *models.ShippingAddress) *dto.AddressResponse {
	return &dto.AddressResponse{
		ID:         a.ID,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
	}
}
