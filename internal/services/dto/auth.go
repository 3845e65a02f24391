package dto

import (
	"time"

	"knotty_backend/internal/models"
)

// RegisterRequest - new account payload. Role is optional and may only
// name the customer role; admins are created through the back office.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Age      int    `json:"age" validate:"required,gte=18,lte=100"`
	Role     string `json:"role" validate:"omitempty,is-user-role"`
}

// LoginRequest - first login step
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyMfaLoginRequest - second login step. The temp token may come in
// the body or the Authorization header.
type VerifyMfaLoginRequest struct {
	TempToken string `json:"temp_token" validate:"omitempty"`
	Code      string `json:"code" validate:"required,len=6"`
}

// VerifyMfaSetupRequest - MFA enrollment confirmation
type VerifyMfaSetupRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// ForgotPasswordRequest - reset initiation
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest - reset completion
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// LoginResponse - result of the first login step. Exactly one of Token
// and TempToken is set, depending on whether MFA is enabled.
type LoginResponse struct {
	Token       string   `json:"token,omitempty"`
	TempToken   string   `json:"temp_token,omitempty"`
	MfaRequired bool     `json:"mfa_required"`
	User        *UserDTO `json:"user,omitempty"`
}

// SessionResponse - a fully established session
type SessionResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// MessageResponse - generic acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// UserDTO - public account representation
type UserDTO struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Age                int             `json:"age"`
	Role               models.UserRole `json:"role"`
	IsActive           bool            `json:"is_active"`
	MfaEnabled         bool            `json:"mfa_enabled"`
	PhoneNumber        string          `json:"phone_number,omitempty"`
	ProfileImage       string          `json:"profile_image,omitempty"`
	Newsletter         bool            `json:"newsletter"`
	EmailNotifications bool            `json:"email_notifications"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToUserDTO maps a user model onto its public representation.
func ToUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Age:                u.Age,
		Role:               u.Role,
		IsActive:           u.IsActive,
		MfaEnabled:         u.MfaEnabled,
		PhoneNumber:        u.PhoneNumber,
		ProfileImage:       u.ProfileImage,
		Newsletter:         u.Newsletter,
		EmailNotifications: u.EmailNotifications,
		CreatedAt:          u.CreatedAt,
	}
}
