package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrWrongStage   = errors.New("token issued for a different stage")
)

// SessionClaims is the payload of a fully authenticated session token.
type SessionClaims struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	MfaVerified bool   `json:"mfa_verified"`
	jwt.RegisteredClaims
}

// TempClaims is the payload of the short-lived token bridging the two
// login steps when the account has MFA enabled. TempAuth marks the token
// so it can never be accepted as a session token.
type TempClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	TempAuth    bool   `json:"temp_auth"`
	MfaRequired bool   `json:"mfa_required"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies both token kinds with a shared secret.
type TokenIssuer struct {
	Secret     []byte
	Issuer     string
	SessionTTL time.Duration
	TempTTL    time.Duration
}

func NewTokenIssuer(secret string, sessionTTL, tempTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Secret:     []byte(secret),
		Issuer:     "knotty",
		SessionTTL: sessionTTL,
		TempTTL:    tempTTL,
	}
}

func (t *TokenIssuer) IssueSession(userID, role string, mfaVerified bool) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:      userID,
		Role:        role,
		MfaVerified: mfaVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.SessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

func (t *TokenIssuer) IssueTemp(userID, email string) (string, error) {
	now := time.Now()
	claims := TempClaims{
		UserID:      userID,
		Email:       email,
		TempAuth:    true,
		MfaRequired: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TempTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// ParseSession verifies a session token. Temp tokens are signed with the
// same secret, so the stage marker has to be checked explicitly.
func (t *TokenIssuer) ParseSession(tokenStr string) (*SessionClaims, error) {
	var probe TempClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &probe); err == nil && probe.TempAuth {
		return nil, ErrWrongStage
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, t.keyFunc,
		jwt.WithIssuer(t.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	if c, ok := parsed.Claims.(*SessionClaims); ok && parsed.Valid {
		return c, nil
	}
	return nil, ErrTokenInvalid
}

// ParseTemp verifies a temp token and rejects tokens that lack the
// temp_auth marker, so a session token cannot stand in for one.
func (t *TokenIssuer) ParseTemp(tokenStr string) (*TempClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &TempClaims{}, t.keyFunc,
		jwt.WithIssuer(t.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	c, ok := parsed.Claims.(*TempClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if !c.TempAuth {
		return nil, ErrWrongStage
	}
	return c, nil
}

func (t *TokenIssuer) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected alg: %v", token.Header["alg"])
	}
	return t.Secret, nil
}
