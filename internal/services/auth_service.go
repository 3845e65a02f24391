package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"knotty_backend/internal/auth"
	"knotty_backend/internal/email"
	"knotty_backend/internal/logger"
	"knotty_backend/internal/models"
	"knotty_backend/internal/repositories"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"
)

// AuthService implements registration, the two-step login, MFA
// enrollment, and password reset.
type AuthService struct {
	users  repositories.UserRepository
	emails email.Provider
	tokens *auth.TokenIssuer
}

func NewAuthService(users repositories.UserRepository, emails email.Provider, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		emails: emails,
		tokens: tokens,
	}
}

// normalizeEmail lowercases addresses so lookups and the uniqueness
// check are case-insensitive regardless of how the caller typed them.
func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserDTO, error) {
	if req.Role != "" && models.UserRole(req.Role) != models.RoleCustomer {
		return nil, apperrors.NewForbiddenError("Admin accounts cannot be self-registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Age:          req.Age,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "email", user.Email)

	out := dto.ToUserDTO(user)
	return &out, nil
}

// Login runs the first authentication step. Accounts without MFA get a
// session token straight away; accounts with MFA get an emailed code and
// a temp token for the second step.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrEmailNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.MfaEnabled {
		token, err := s.tokens.IssueSession(user.ID, string(user.Role), false)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		userDTO := dto.ToUserDTO(user)
		return &dto.LoginResponse{
			Token:       token,
			MfaRequired: false,
			User:        &userDTO,
		}, nil
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	expiresAt := time.Now().Add(auth.CodeTTLMinutes * time.Minute)
	// Overwrites any earlier code, so only the latest one is live.
	if err := s.users.StoreLoginCode(user.ID, code, expiresAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.emails.Send(email.LoginCodeEmail(user.Email, user.Name, code)); err != nil {
		logger.CtxWithError(ctx, "failed to send login code", err, "user_id", user.ID)
		return nil, apperrors.EmailDispatchError(err)
	}

	tempToken, err := s.tokens.IssueTemp(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "login code sent", "user_id", user.ID)

	return &dto.LoginResponse{
		TempToken:   tempToken,
		MfaRequired: true,
	}, nil
}

// VerifyMfaLogin completes the second login step. The code is cleared in
// the same statement that validates it, so it works exactly once.
func (s *AuthService) VerifyMfaLogin(ctx context.Context, tempToken, code string) (*dto.SessionResponse, error) {
	claims, err := s.tokens.ParseTemp(tempToken)
	if err != nil {
		return nil, apperrors.ErrInvalidTempToken
	}

	// The account is re-checked before the code: it may have been
	// deleted or deactivated since the temp token was issued.
	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountInactive
	}
	if !user.MfaEnabled {
		return nil, apperrors.ErrMfaNotEnabled
	}

	ok, err := s.users.ConsumeLoginCode(user.ID, code)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidMfaCode
	}

	token, err := s.tokens.IssueSession(user.ID, string(user.Role), true)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "mfa login verified", "user_id", user.ID)

	return &dto.SessionResponse{
		Token: token,
		User:  dto.ToUserDTO(user),
	}, nil
}

// SetupMfa starts MFA enrollment. The code is only persisted after the
// email goes out, so a failed send leaves the account untouched.
func (s *AuthService) SetupMfa(ctx context.Context, userID string) (*dto.MessageResponse, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.emails.Send(email.SetupCodeEmail(user.Email, user.Name, code)); err != nil {
		logger.CtxWithError(ctx, "failed to send setup code", err, "user_id", user.ID)
		return nil, apperrors.EmailDispatchError(err)
	}

	expiresAt := time.Now().Add(auth.CodeTTLMinutes * time.Minute)
	if err := s.users.StoreSetupCode(user.ID, code, expiresAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "mfa setup code sent", "user_id", user.ID)

	return &dto.MessageResponse{Message: "Verification code sent to your email"}, nil
}

// VerifyMfaSetup finishes enrollment: a valid code flips MFA on and is
// consumed in the same statement.
func (s *AuthService) VerifyMfaSetup(ctx context.Context, userID, code string) (*dto.MessageResponse, error) {
	ok, err := s.users.ConsumeSetupCode(userID, code)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidSetupCode
	}

	logger.CtxInfo(ctx, "mfa enabled", "user_id", userID)

	return &dto.MessageResponse{Message: "Two-factor authentication enabled"}, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) (*dto.MessageResponse, error) {
	user, err := s.users.FindByEmail(normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrEmailNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	expiresAt := time.Now().Add(auth.CodeTTLMinutes * time.Minute)
	if err := s.users.StoreResetCode(user.ID, code, expiresAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.emails.Send(email.ResetCodeEmail(user.Email, user.Name, code)); err != nil {
		logger.CtxWithError(ctx, "failed to send reset code", err, "user_id", user.ID)
		return nil, apperrors.EmailDispatchError(err)
	}

	logger.CtxInfo(ctx, "reset code sent", "user_id", user.ID)

	return &dto.MessageResponse{Message: "Password reset code sent to your email"}, nil
}

// ResetPassword applies the new password and clears the reset code in a
// single statement, so a code cannot be replayed.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error) {
	user, err := s.users.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrEmailNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ok, err := s.users.ConsumeResetCode(user.ID, req.Code, hash)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidResetCode
	}

	logger.CtxInfo(ctx, "password reset", "user_id", user.ID)

	return &dto.MessageResponse{Message: "Password has been reset"}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*dto.UserDTO, error) {
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
