package middleware

import (
	"strings"

	"knotty_backend/internal/auth"
	"knotty_backend/internal/logger"
	"knotty_backend/internal/models"
	"knotty_backend/pkg/apperrors"
	"knotty_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie the session token travels in for
// browser clients. API clients use the Authorization header instead.
const SessionCookieName = "token"

// Principal is the authenticated identity stored on the request.
type Principal struct {
	UserID      string
	Role        models.UserRole
	MfaVerified bool
}

// TokenExtractor pulls a raw token out of the request. Extractors are
// tried in order; the first non-empty result wins.
type TokenExtractor interface {
	Extract(c *gin.Context) string
}

// HeaderExtractor reads "Authorization: Bearer <token>".
type HeaderExtractor struct{}

func (HeaderExtractor) Extract(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// CookieExtractor reads the session cookie.
type CookieExtractor struct{}

func (CookieExtractor) Extract(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

// Authenticate verifies a session token found by any of the extractors.
// A missing token is 401; a present but unusable token is 403.
func Authenticate(issuer *auth.TokenIssuer, extractors ...TokenExtractor) gin.HandlerFunc {
	if len(extractors) == 0 {
		extractors = []TokenExtractor{HeaderExtractor{}, CookieExtractor{}}
	}

	return func(c *gin.Context) {
		var tokenStr string
		for _, ex := range extractors {
			if tokenStr = ex.Extract(c); tokenStr != "" {
				break
			}
		}
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.New(
				apperrors.CodeUnauthorized, "auth", "Authentication required", 401))
			return
		}

		claims, err := issuer.ParseSession(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.New(
				apperrors.CodeInvalidToken, "auth", "Invalid or expired token", 403))
			return
		}

		principal := &Principal{
			UserID:      claims.UserID,
			Role:        models.UserRole(claims.Role),
			MfaVerified: claims.MfaVerified,
		}

		ctx := logger.WithUserID(c.Request.Context(), principal.UserID)
		ctx = contextkeys.WithPrincipal(ctx, principal.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Set("principal", principal)
		c.Next()
	}
}

// RequireRoles gates a route to the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			apperrors.HandleError(c, apperrors.New(
				apperrors.CodeUnauthorized, "auth", "Authentication required", 401))
			return
		}
		if !roleSet[principal.Role] {
			apperrors.HandleError(c, apperrors.New(
				apperrors.CodeForbidden, "auth", "Insufficient permissions", 403))
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated identity, or nil.
func GetPrincipal(c *gin.Context) *Principal {
	v, exists := c.Get("principal")
	if !exists {
		return nil
	}
	principal, ok := v.(*Principal)
	if !ok {
		return nil
	}
	return principal
}

// GetUserID returns the authenticated user's ID, or "".
func GetUserID(c *gin.Context) string {
	if p := GetPrincipal(c); p != nil {
		return p.UserID
	}
	return ""
}
