package services

import (
	"context"
	"testing"
	"time"

	"knotty_backend/internal/auth"
	"knotty_backend/internal/models"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeEmailProvider) {
	t.Helper()
	users := newFakeUserRepo()
	emails := &fakeEmailProvider{}
	tokens := auth.NewTokenIssuer("service-test-secret", 3*time.Hour, 10*time.Minute)
	return NewAuthService(users, emails, tokens), users, emails
}

func registerUser(t *testing.T, s *AuthService, emailAddr string) *dto.UserDTO {
	t.Helper()
	user, err := s.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Ada",
		Email:    emailAddr,
		Password: "Secret12345",
		Age:      30,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAssignsCustomerRole(t *testing.T) {
	s, users, _ := newAuthFixture(t)

	out := registerUser(t, s, "ada@example.com")
	assert.Equal(t, models.RoleCustomer, out.Role)
	assert.True(t, out.IsActive)

	stored := users.users[out.ID]
	assert.NotEqual(t, "Secret12345", stored.PasswordHash)
}

func TestRegisterDuplicateEmailIs409(t *testing.T) {
	s, _, _ := newAuthFixture(t)
	registerUser(t, s, "ada@example.com")

	_, err := s.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Other",
		Email:    "ada@example.com",
		Password: "Another12345",
		Age:      40,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestRegisterNormalizesEmailCase(t *testing.T) {
	s, users, _ := newAuthFixture(t)

	out := registerUser(t, s, "  Ada@Example.COM ")
	assert.Equal(t, "ada@example.com", users.users[out.ID].Email)

	// A differently cased spelling is the same address.
	_, err := s.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Other",
		Email:    "ada@example.com",
		Password: "Another12345",
		Age:      40,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLoginAcceptsDifferentlyCasedEmail(t *testing.T) {
	s, _, _ := newAuthFixture(t)
	registerUser(t, s, "ada@example.com")

	out, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ADA@Example.com",
		Password: "Secret12345",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	s, _, _ := newAuthFixture(t)

	_, err := s.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "Secret12345",
		Age:      30,
		Role:     "admin",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	// Spelling out the customer role is allowed.
	out, err := s.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "Secret12345",
		Age:      30,
		Role:     "customer",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, out.Role)
}

func TestLoginWithoutMfaReturnsSessionToken(t *testing.T) {
	s, _, _ := newAuthFixture(t)
	registerUser(t, s, "ada@example.com")

	out, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	require.NoError(t, err)

	assert.False(t, out.MfaRequired)
	assert.NotEmpty(t, out.Token)
	assert.Empty(t, out.TempToken)
	assert.Equal(t, "ada@example.com", out.User.Email)
}

func TestLoginUnknownEmailIs404(t *testing.T) {
	s, _, _ := newAuthFixture(t)

	_, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailNotFound)
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	s, _, _ := newAuthFixture(t)
	registerUser(t, s, "ada@example.com")

	_, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginInactiveAccountIs403(t *testing.T) {
	s, users, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].IsActive = false

	_, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
}

func TestLoginWithMfaSendsCodeAndTempToken(t *testing.T) {
	s, users, emails := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].MfaEnabled = true

	resp, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	require.NoError(t, err)

	assert.True(t, resp.MfaRequired)
	assert.Empty(t, resp.Token)
	assert.NotEmpty(t, resp.TempToken)

	stored := users.users[out.ID]
	assert.Len(t, stored.MfaLoginCode, 6)
	assert.Contains(t, emails.lastBody(), stored.MfaLoginCode)
}

func TestLoginWithMfaFailsWhenEmailFails(t *testing.T) {
	s, users, emails := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].MfaEnabled = true
	emails.failing = true

	_, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeExternalServiceError, appErr.Code)
}

func TestVerifyMfaLoginConsumesCodeOnce(t *testing.T) {
	s, users, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].MfaEnabled = true

	resp, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	require.NoError(t, err)
	code := users.users[out.ID].MfaLoginCode

	session, err := s.VerifyMfaLogin(context.Background(), resp.TempToken, code)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, out.ID, session.User.ID)

	// The same code must not work twice.
	_, err = s.VerifyMfaLogin(context.Background(), resp.TempToken, code)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMfaCode)
}

func TestVerifyMfaLoginRejectsWrongCode(t *testing.T) {
	s, users, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].MfaEnabled = true

	resp, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	require.NoError(t, err)

	_, err = s.VerifyMfaLogin(context.Background(), resp.TempToken, "000000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidMfaCode)
}

func TestVerifyMfaLoginRejectsBadTempToken(t *testing.T) {
	s, _, _ := newAuthFixture(t)

	_, err := s.VerifyMfaLogin(context.Background(), "garbage", "ABC123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTempToken)
}

func TestVerifyMfaLoginMissingUserIs404(t *testing.T) {
	s, users, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].MfaEnabled = true

	resp, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	require.NoError(t, err)
	code := users.users[out.ID].MfaLoginCode

	// The account can disappear between the two login stages.
	delete(users.users, out.ID)

	_, err = s.VerifyMfaLogin(context.Background(), resp.TempToken, code)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestVerifyMfaLoginChecksAccountBeforeCode(t *testing.T) {
	s, users, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].MfaEnabled = true

	resp, err := s.Login(context.Background(), &dto.LoginRequest{
		Email:    "ada@example.com",
		Password: "Secret12345",
	})
	require.NoError(t, err)
	code := users.users[out.ID].MfaLoginCode

	users.users[out.ID].MfaEnabled = false

	_, err = s.VerifyMfaLogin(context.Background(), resp.TempToken, code)
	assert.ErrorIs(t, err, apperrors.ErrMfaNotEnabled)
	// The code survives a rejected attempt.
	assert.Equal(t, code, users.users[out.ID].MfaLoginCode)
}

func TestNewLoginSupersedesPreviousCode(t *testing.T) {
	s, users, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	users.users[out.ID].MfaEnabled = true

	login := func() (string, string) {
		resp, err := s.Login(context.Background(), &dto.LoginRequest{
			Email:    "ada@example.com",
			Password: "Secret12345",
		})
		require.NoError(t, err)
		return resp.TempToken, users.users[out.ID].MfaLoginCode
	}

	_, firstCode := login()
	secondToken, secondCode := login()
	require.NotEqual(t, firstCode, secondCode)

	// Only the most recent code is live.
	_, err := s.VerifyMfaLogin(context.Background(), secondToken, firstCode)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMfaCode)

	_, err = s.VerifyMfaLogin(context.Background(), secondToken, secondCode)
	assert.NoError(t, err)
}

func TestSetupMfaFlow(t *testing.T) {
	s, users, emails := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")

	_, err := s.SetupMfa(context.Background(), out.ID)
	require.NoError(t, err)

	stored := users.users[out.ID]
	require.Len(t, stored.MfaSetupCode, 6)
	assert.Contains(t, emails.lastBody(), stored.MfaSetupCode)
	assert.False(t, stored.MfaEnabled)

	_, err = s.VerifyMfaSetup(context.Background(), out.ID, stored.MfaSetupCode)
	require.NoError(t, err)

	assert.True(t, users.users[out.ID].MfaEnabled)
	assert.Empty(t, users.users[out.ID].MfaSetupCode)
}

func TestSetupMfaDoesNotStoreCodeWhenEmailFails(t *testing.T) {
	s, users, emails := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")
	emails.failing = true

	_, err := s.SetupMfa(context.Background(), out.ID)
	require.Error(t, err)
	assert.Empty(t, users.users[out.ID].MfaSetupCode)
}

func TestVerifyMfaSetupRejectsWrongCode(t *testing.T) {
	s, _, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")

	_, err := s.SetupMfa(context.Background(), out.ID)
	require.NoError(t, err)

	_, err = s.VerifyMfaSetup(context.Background(), out.ID, "FFFFFF")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSetupCode)
}

func TestPasswordResetFlow(t *testing.T) {
	s, users, emails := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")

	_, err := s.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)

	code := users.users[out.ID].ResetCode
	require.Len(t, code, 6)
	assert.Contains(t, emails.lastBody(), code)

	_, err = s.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email:       "ada@example.com",
		Code:        code,
		NewPassword: "Fresh12345",
	})
	require.NoError(t, err)

	// Old password rejected, new one accepted.
	_, err = s.Login(context.Background(), &dto.LoginRequest{
		Email: "ada@example.com", Password: "Secret12345",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = s.Login(context.Background(), &dto.LoginRequest{
		Email: "ada@example.com", Password: "Fresh12345",
	})
	assert.NoError(t, err)

	// The code is single-use.
	_, err = s.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email:       "ada@example.com",
		Code:        code,
		NewPassword: "Another12345",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetCode)
}

func TestForgotPasswordUnknownEmailIs404(t *testing.T) {
	s, _, _ := newAuthFixture(t)

	_, err := s.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrEmailNotFound)
}

func TestResetPasswordExpiredCodeRejected(t *testing.T) {
	s, users, _ := newAuthFixture(t)
	out := registerUser(t, s, "ada@example.com")

	_, err := s.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	users.users[out.ID].ResetCodeExp = &expired

	_, err = s.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Email:       "ada@example.com",
		Code:        users.users[out.ID].ResetCode,
		NewPassword: "Fresh12345",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetCode)
}
