package handlers

import (
	"net/http"
	"strings"

	"knotty_backend/internal/middleware"
	"knotty_backend/internal/services"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const sessionCookieMaxAge = 3 * 60 * 60 // seconds, matches the session TTL

type AuthHandler struct {
	*BaseHandler
	authService *services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes mounts the public auth endpoints and the authenticated
// MFA enrollment endpoints.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	auth := public.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/verify-mfa-login", h.VerifyMfaLogin)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}

	session := protected.Group("/auth")
	{
		session.GET("/me", h.Me)
		session.POST("/logout", h.Logout)
		session.POST("/setup-mfa", h.SetupMfa)
		session.POST("/verify-mfa-setup", h.VerifyMfaSetup)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if response.Token != "" {
		h.setSessionCookie(c, response.Token)
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) VerifyMfaLogin(c *gin.Context) {
	var req dto.VerifyMfaLoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	// The temp token may come in the body or the Authorization header.
	tempToken := req.TempToken
	if tempToken == "" {
		tempToken = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if tempToken == "" {
		h.HandleServiceError(c, apperrors.ErrInvalidTempToken)
		return
	}

	response, err := h.authService.VerifyMfaLogin(c.Request.Context(), tempToken, strings.ToUpper(req.Code))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, response.Token)
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) SetupMfa(c *gin.Context) {
	response, err := h.authService.SetupMfa(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) VerifyMfaSetup(c *gin.Context) {
	var req dto.VerifyMfaSetupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.VerifyMfaSetup(c.Request.Context(), middleware.GetUserID(c), strings.ToUpper(req.Code))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	req.Code = strings.ToUpper(req.Code)
	response, err := h.authService.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// setSessionCookie also returns the token in the body; browser clients
// ride on the cookie, API clients on the Authorization header.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.SessionCookieName, token, sessionCookieMaxAge, "/", "", true, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", true, true)
}
