package repositories

import (
	"errors"
	"time"

	"knotty_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrAddressNotFound   = errors.New("shipping address not found")
)

type UserRepository interface {
	// User operations
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	UpdateProfile(userID string, fields map[string]interface{}) error
	SetPassword(userID, passwordHash string) error
	SetActive(userID string, active bool) error
	SetRole(userID string, role models.UserRole) error
	Delete(userID string) error

	// Admin operations
	FindAll(limit, offset int) ([]models.User, error)
	CountAll() (int64, error)
	FindWithFilter(criteria UserFilter) ([]models.User, int64, error)

	// MFA code operations. Store* overwrite any previous code so only the
	// most recent one is live. Consume* clear the code in the same
	// statement that validates it, so a code is accepted at most once.
	StoreLoginCode(userID, code string, expiresAt time.Time) error
	ConsumeLoginCode(userID, code string) (bool, error)
	StoreSetupCode(userID, code string, expiresAt time.Time) error
	ConsumeSetupCode(userID, code string) (bool, error)
	StoreResetCode(userID, code string, expiresAt time.Time) error
	ConsumeResetCode(userID, code, newPasswordHash string) (bool, error)

	// Wishlist operations
	AddToWishlist(userID, productID string) error
	RemoveFromWishlist(userID, productID string) error
	GetWishlist(userID string) ([]models.Product, error)

	// Shipping address operations
	CreateAddress(address *models.ShippingAddress) error
	ListAddresses(userID string) ([]models.ShippingAddress, error)
	DeleteAddress(userID, addressID string) error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

type UserFilter struct {
	Role     models.UserRole
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// User operations

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	var existing models.User
	if err := r.db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return ErrUserAlreadyExists
	}

	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) UpdateProfile(userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SetPassword(userID, passwordHash string) error {
	return r.UpdateProfile(userID, map[string]interface{}{
		"password_hash": passwordHash,
	})
}

func (r *UserRepositoryImpl) SetActive(userID string, active bool) error {
	return r.UpdateProfile(userID, map[string]interface{}{
		"is_active": active,
	})
}

func (r *UserRepositoryImpl) SetRole(userID string, role models.UserRole) error {
	return r.UpdateProfile(userID, map[string]interface{}{
		"role": role,
	})
}

func (r *UserRepositoryImpl) Delete(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.ShippingAddress{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{BaseModel: models.BaseModel{ID: userID}}).
			Association("Wishlist").Clear(); err != nil {
			return err
		}

		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// Admin operations

func (r *UserRepositoryImpl) FindAll(limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepositoryImpl) FindWithFilter(criteria UserFilter) ([]models.User, int64, error) {
	var users []models.User
	query := r.db.Model(&models.User{})

	if criteria.Role != "" {
		query = query.Where("role = ?", criteria.Role)
	}
	if criteria.IsActive != nil {
		query = query.Where("is_active = ?", *criteria.IsActive)
	}
	if criteria.Search != "" {
		search := "%" + criteria.Search + "%"
		query = query.Where("email ILIKE ? OR name ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// MFA code operations

func (r *UserRepositoryImpl) StoreLoginCode(userID, code string, expiresAt time.Time) error {
	return r.UpdateProfile(userID, map[string]interface{}{
		"mfa_login_code":     code,
		"mfa_login_code_exp": expiresAt,
	})
}

// ConsumeLoginCode validates and clears the code in a single conditional
// update, so concurrent attempts with the same code cannot both succeed.
func (r *UserRepositoryImpl) ConsumeLoginCode(userID, code string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND mfa_login_code = ? AND mfa_login_code <> '' AND mfa_login_code_exp > ?",
			userID, code, time.Now()).
		Updates(map[string]interface{}{
			"mfa_login_code":     "",
			"mfa_login_code_exp": nil,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *UserRepositoryImpl) StoreSetupCode(userID, code string, expiresAt time.Time) error {
	return r.UpdateProfile(userID, map[string]interface{}{
		"mfa_setup_code":     code,
		"mfa_setup_code_exp": expiresAt,
	})
}

// ConsumeSetupCode flips mfa_enabled in the same statement that validates
// the enrollment code.
func (r *UserRepositoryImpl) ConsumeSetupCode(userID, code string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND mfa_setup_code = ? AND mfa_setup_code <> '' AND mfa_setup_code_exp > ?",
			userID, code, time.Now()).
		Updates(map[string]interface{}{
			"mfa_enabled":        true,
			"mfa_setup_code":     "",
			"mfa_setup_code_exp": nil,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *UserRepositoryImpl) StoreResetCode(userID, code string, expiresAt time.Time) error {
	return r.UpdateProfile(userID, map[string]interface{}{
		"reset_code":     code,
		"reset_code_exp": expiresAt,
	})
}

// ConsumeResetCode applies the new password hash and clears the reset
// code atomically, so a reset code cannot be replayed.
func (r *UserRepositoryImpl) ConsumeResetCode(userID, code, newPasswordHash string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND reset_code = ? AND reset_code <> '' AND reset_code_exp > ?",
			userID, code, time.Now()).
		Updates(map[string]interface{}{
			"password_hash":  newPasswordHash,
			"reset_code":     "",
			"reset_code_exp": nil,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Wishlist operations

func (r *UserRepositoryImpl) AddToWishlist(userID, productID string) error {
	user := models.User{BaseModel: models.BaseModel{ID: userID}}
	product := models.Product{BaseModelWithDeleted: models.BaseModelWithDeleted{
		BaseModel: models.BaseModel{ID: productID},
	}}
	return r.db.Model(&user).Association("Wishlist").Append(&product)
}

func (r *UserRepositoryImpl) RemoveFromWishlist(userID, productID string) error {
	user := models.User{BaseModel: models.BaseModel{ID: userID}}
	product := models.Product{BaseModelWithDeleted: models.BaseModelWithDeleted{
		BaseModel: models.BaseModel{ID: productID},
	}}
	return r.db.Model(&user).Association("Wishlist").Delete(&product)
}

func (r *UserRepositoryImpl) GetWishlist(userID string) ([]models.Product, error) {
	var products []models.Product
	user := models.User{BaseModel: models.BaseModel{ID: userID}}
	err := r.db.Model(&user).Association("Wishlist").Find(&products)
	return products, err
}

// Shipping address operations

// CreateAddress keeps at most one default address per user. Marking the
// new address default clears the flag on the others in the same
// transaction.
func (r *UserRepositoryImpl) CreateAddress(address *models.ShippingAddress) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.ShippingAddress{}).
				Where("user_id = ? AND is_default = ?", address.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
}

func (r *UserRepositoryImpl) ListAddresses(userID string) ([]models.ShippingAddress, error) {
	var addresses []models.ShippingAddress
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error
	return addresses, err
}

func (r *UserRepositoryImpl) DeleteAddress(userID, addressID string) error {
	result := r.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&models.ShippingAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAddressNotFound
	}
	return nil
}
